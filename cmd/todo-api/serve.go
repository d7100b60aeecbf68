package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-api/config"
	"todo-api/todos"
	"todo-api/todos/application"
	"todo-api/todos/domain"
	"todo-api/todos/infra"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type serveOptions struct {
	envFile string
}

// flagKeys liga as flags da CLI às chaves de configuração.
var flagKeys = map[string]string{
	"addr":       config.KeyListenAddr,
	"port":       config.KeyPort,
	"seed-file":  config.KeySeedFile,
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
}

func loadConfig(cmd *cobra.Command, opts serveOptions) (config.Config, error) {
	required := cmd.Flags().Changed("env-file")
	if err := config.LoadDotEnv(opts.envFile, required); err != nil {
		return config.Config{}, err
	}

	v := config.New()
	if err := bindFlags(cmd, v); err != nil {
		return config.Config{}, err
	}
	return config.Load(v)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	lvl, _ := cfg.SlogLevel()
	hopts := &slog.HandlerOptions{Level: lvl}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func newStore(cfg config.Config, schema *domain.Schema) (*infra.MemoryStore, error) {
	if cfg.SeedFile == "" {
		return infra.NewMemoryStore(), nil
	}
	seed, err := infra.LoadSeedFile(cfg.SeedFile, schema)
	if err != nil {
		return nil, err
	}
	return infra.NewMemoryStore(infra.WithTodos(seed)), nil
}

// newStats escolhe o backend de estatísticas. A função de fechamento nunca é nil.
func newStats(ctx context.Context, cfg config.Config) (domain.StatsStore, todos.StatsView, func(), error) {
	noop := func() {}
	if !cfg.StatsEnabled {
		return nil, nil, noop, nil
	}
	if !cfg.RedisStats() {
		mem := infra.NewMemoryStatsStore()
		return mem, mem, noop, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.StatsRedisAddr,
		Password: cfg.StatsRedisPassword,
		DB:       cfg.StatsRedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, noop, fmt.Errorf("redis stats ping: %w", err)
	}

	store := infra.NewRedisStatsStore(
		rdb,
		infra.WithStatsPrefix(cfg.StatsPrefix),
		infra.WithStatsTTL(cfg.StatsTTL),
		infra.WithStatsBucket(cfg.StatsBucket),
	)
	return store, nil, func() { _ = rdb.Close() }, nil
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	schema := domain.NewSchema()
	store, err := newStore(cfg, schema)
	if err != nil {
		logger.Error("seed load failed", "err", err, "seed_file", cfg.SeedFile)
		return err
	}

	stats, view, closeStats, err := newStats(ctx, cfg)
	if err != nil {
		logger.Error("stats setup failed", "err", err, "redis_addr", cfg.StatsRedisAddr)
		return err
	}
	defer closeStats()

	h := todos.NewRouter(todos.Options{
		Service:        application.Service{Store: store, Schema: schema},
		Logger:         logger,
		Stats:          stats,
		StatsView:      view,
		MaxInFlight:    cfg.ConcurrencyMax,
		AcquireTimeout: cfg.ConcurrencyTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		logger.Error("listen failed", "err", err, "addr", srv.Addr)
		return err
	}

	logger.Info("todo-api listening", "addr", ln.Addr().String(), "todos", store.Len())
	logger.Info("stats", "enabled", cfg.StatsEnabled, "redis", cfg.RedisStats(), "bucket", cfg.StatsBucket, "ttl", cfg.StatsTTL)
	logger.Info("concurrency", "max", cfg.ConcurrencyMax, "acquire_timeout", cfg.ConcurrencyTimeout)

	// closeStats (defer) só roda depois que serve devolve, ou seja, depois
	// que as requisições em andamento terminaram de gravar estatísticas.
	if err := serve(ctx, srv, ln, cfg.ShutdownTimeout, logger); err != nil {
		return err
	}
	logger.Info("todo-api stopped")
	return nil
}

// serve atende em ln até ctx ser cancelado e então faz o shutdown gracioso,
// esperando as requisições em andamento (até timeout) antes de retornar.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		// Serve caiu sem pedido de shutdown.
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", timeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
		_ = srv.Close()
		<-errCh
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
