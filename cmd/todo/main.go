package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"todo-game/internal/client"
	"todo-game/internal/config"
	"todo-game/internal/logging"
	"todo-game/internal/tasks"
	"todo-game/internal/ui"
)

var version = "dev"

type options struct {
	v   *viper.Viper
	cfg *config.ClientConfig
}

func (o *options) load() error {
	cfg, err := config.LoadClient(o.v)
	if err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

// newLogger writes to a rotated file, or nowhere: the terminal belongs to the UI.
func (o *options) newLogger() (*zap.Logger, error) {
	if o.cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	return logging.New(logging.Config{
		Level:      "debug",
		Format:     "console",
		Output:     o.cfg.LogFile,
		Rotate:     true,
		MaxSizeMB:  10,
		MaxAgeDays: 7,
	})
}

func (o *options) newClient() (*client.Client, error) {
	c, err := client.New(o.cfg.APIURL, o.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return c.WithAppVersion(version), nil
}

func runProgram(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	opts := &options{v: v}

	root := &cobra.Command{
		Use:   "todo",
		Short: "Terminal client for the todo API",
		Long: `todo is a terminal client for the todo API. It lists, filters and
edits todos, runs batch actions and hides a small jumping game behind g.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := opts.newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			api, err := opts.newClient()
			if err != nil {
				return err
			}
			log.Info("starting tui", zap.String("api", api.BaseURL()))
			return runProgram(ui.New(api, log))
		},
	}

	pf := root.PersistentFlags()
	pf.String("api", "http://localhost:3001/api", "base URL of the todo API (env TODO_API_URL)")
	pf.Duration("timeout", 10*time.Second, "HTTP request timeout (env TODO_TIMEOUT)")
	pf.String("log-file", "", "write debug logs to this file (env TODO_LOG_FILE)")

	_ = v.BindPFlag("api_url", pf.Lookup("api"))
	_ = v.BindPFlag("timeout", pf.Lookup("timeout"))
	_ = v.BindPFlag("log_file", pf.Lookup("log-file"))

	root.AddCommand(newGameCmd(opts), newExportCmd(opts))
	return root
}

func newGameCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "game",
		Short: "Play the minigame without the todo list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := opts.newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			api, err := opts.newClient()
			if err != nil {
				return err
			}
			return runProgram(ui.NewGame(api, log))
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		format   string
		filter   string
		sortKey  string
		archived bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print todos as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := opts.newClient()
			if err != nil {
				return err
			}
			q := tasks.ListQuery{Filter: filter, Sort: sortKey}
			if archived {
				q.Archived = &archived
			}
			list, err := api.List(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeTodos(cmd.OutOrStdout(), format, list)
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "json", "output format: json or yaml")
	f.StringVar(&filter, "filter", tasks.FilterAll, "all, active or completed")
	f.StringVar(&sortKey, "sort", tasks.SortDate, "date, priority, dueDate or text")
	f.BoolVar(&archived, "archived", false, "export archived todos instead")
	return cmd
}

func writeTodos(w io.Writer, format string, list []tasks.Task) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}

func main() {
	if err := newRootCmd(config.NewClientViper()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
