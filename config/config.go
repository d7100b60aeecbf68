// Package config carrega a configuração do serviço a partir do ambiente, de um
// arquivo .env opcional e das flags de linha de comando.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Chaves, que também são os nomes das variáveis de ambiente.
const (
	KeyPort               = "PORT"
	KeyListenAddr         = "LISTEN_ADDR"
	KeyLogLevel           = "LOG_LEVEL"
	KeyLogFormat          = "LOG_FORMAT"
	KeySeedFile           = "SEED_FILE"
	KeyConcurrencyMax     = "CONCURRENCY_MAX"
	KeyConcurrencyTimeout = "CONCURRENCY_TIMEOUT"
	KeyStatsEnabled       = "STATS_ENABLED"
	KeyStatsRedisAddr     = "STATS_REDIS_ADDR"
	KeyStatsRedisPassword = "STATS_REDIS_PASSWORD"
	KeyStatsRedisDB       = "STATS_REDIS_DB"
	KeyStatsPrefix        = "STATS_PREFIX"
	KeyStatsTTL           = "STATS_TTL"
	KeyStatsBucket        = "STATS_BUCKET"
	KeyShutdownTimeout    = "SHUTDOWN_TIMEOUT"
)

type Config struct {
	Port       int
	ListenAddr string

	LogLevel  string
	LogFormat string

	SeedFile string

	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration

	StatsEnabled       bool
	StatsRedisAddr     string
	StatsRedisPassword string
	StatsRedisDB       int
	StatsPrefix        string
	StatsTTL           time.Duration
	StatsBucket        string

	ShutdownTimeout time.Duration
}

// New devolve uma instância do viper com os defaults e o ambiente já ligados.
// Flags podem ser ligadas a ela antes de chamar Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, 8000)
	v.SetDefault(KeyListenAddr, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeySeedFile, "")
	v.SetDefault(KeyConcurrencyMax, 100)
	v.SetDefault(KeyConcurrencyTimeout, time.Duration(0))
	v.SetDefault(KeyStatsEnabled, true)
	v.SetDefault(KeyStatsRedisAddr, "")
	v.SetDefault(KeyStatsRedisPassword, "")
	v.SetDefault(KeyStatsRedisDB, 0)
	v.SetDefault(KeyStatsPrefix, "todos:stats")
	v.SetDefault(KeyStatsTTL, 24*time.Hour)
	v.SetDefault(KeyStatsBucket, "minute")
	v.SetDefault(KeyShutdownTimeout, 10*time.Second)
	v.AutomaticEnv()
	return v
}

// LoadDotEnv carrega um arquivo .env no ambiente do processo sem sobrescrever
// variáveis já definidas. Arquivo ausente só é erro quando required for true.
func LoadDotEnv(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load lê a configuração de v e valida.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:               v.GetInt(KeyPort),
		ListenAddr:         strings.TrimSpace(v.GetString(KeyListenAddr)),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		SeedFile:           strings.TrimSpace(v.GetString(KeySeedFile)),
		ConcurrencyMax:     v.GetInt(KeyConcurrencyMax),
		ConcurrencyTimeout: v.GetDuration(KeyConcurrencyTimeout),
		StatsEnabled:       v.GetBool(KeyStatsEnabled),
		StatsRedisAddr:     strings.TrimSpace(v.GetString(KeyStatsRedisAddr)),
		StatsRedisPassword: v.GetString(KeyStatsRedisPassword),
		StatsRedisDB:       v.GetInt(KeyStatsRedisDB),
		StatsPrefix:        v.GetString(KeyStatsPrefix),
		StatsTTL:           v.GetDuration(KeyStatsTTL),
		StatsBucket:        strings.ToLower(strings.TrimSpace(v.GetString(KeyStatsBucket))),
		ShutdownTimeout:    v.GetDuration(KeyShutdownTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" && (c.Port < 1 || c.Port > 65535) {
		return fmt.Errorf("%s must be in 1..65535, got %d", KeyPort, c.Port)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%s must be text or json, got %q", KeyLogFormat, c.LogFormat)
	}
	if c.ConcurrencyMax < 0 {
		return fmt.Errorf("%s must be >= 0", KeyConcurrencyMax)
	}
	if c.ConcurrencyTimeout < 0 {
		return fmt.Errorf("%s must be >= 0", KeyConcurrencyTimeout)
	}
	if c.StatsBucket != "minute" && c.StatsBucket != "none" {
		return fmt.Errorf("%s must be minute or none, got %q", KeyStatsBucket, c.StatsBucket)
	}
	if c.StatsRedisDB < 0 {
		return fmt.Errorf("%s must be >= 0", KeyStatsRedisDB)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s must be > 0", KeyShutdownTimeout)
	}
	return nil
}

// Addr é o endereço de escuta: LISTEN_ADDR se definido, senão ":PORT".
func (c Config) Addr() string {
	if c.ListenAddr != "" {
		return c.ListenAddr
	}
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// RedisStats indica se os contadores vão para o Redis.
func (c Config) RedisStats() bool {
	return c.StatsEnabled && c.StatsRedisAddr != ""
}

func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return lvl, nil
}
