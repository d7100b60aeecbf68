package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "todo-api",
		Short: "In-memory todo list HTTP API",
		Long: `todo-api serves an in-memory, ordered todo list over HTTP.

Configuration comes from flags, environment variables (PORT, LISTEN_ADDR,
LOG_LEVEL, SEED_FILE, CONCURRENCY_MAX, STATS_REDIS_ADDR, ...) and an optional
.env file, in that order of precedence.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	f.String("addr", "", "listen address, overrides --port (env LISTEN_ADDR)")
	f.Int("port", 8000, "listen port (env PORT)")
	f.String("seed-file", "", "JSON file with the initial todos (env SEED_FILE)")
	f.String("log-level", "info", "debug, info, warn or error (env LOG_LEVEL)")
	f.String("log-format", "text", "text or json (env LOG_FORMAT)")
	return cmd
}
