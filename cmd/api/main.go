package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"todo-game/internal/config"
	"todo-game/internal/logging"
	"todo-game/internal/server"
)

var version = "dev"

func newRootCmd(v *viper.Viper) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "todo-api",
		Short: "Todo REST API",
		Long: `todo-api serves the todo REST API: list, create, update, delete and
batch operations over todos, plus stats and categories.

Storage is in memory by default; set --store to postgres or sqlite to
keep todos across restarts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}

			log, err := logging.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = log.Sync() }()

			log.Info("starting todo-api",
				zap.String("version", version),
				zap.String("store", cfg.Store.Driver),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "path to a YAML config file")
	f.String("addr", ":3001", "listen address")
	f.String("store", config.DriverMemory, "store driver: memory, postgres or sqlite")
	f.String("sqlite-path", "todos.db", "database file for the sqlite store")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-format", "console", "log format: console or json")

	_ = v.BindPFlag("http.addr", f.Lookup("addr"))
	_ = v.BindPFlag("store.driver", f.Lookup("store"))
	_ = v.BindPFlag("store.sqlite_path", f.Lookup("sqlite-path"))
	_ = v.BindPFlag("log.level", f.Lookup("log-level"))
	_ = v.BindPFlag("log.format", f.Lookup("log-format"))

	return cmd
}

func main() {
	if err := newRootCmd(config.NewViper()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
