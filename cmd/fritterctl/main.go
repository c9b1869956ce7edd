// Package main provides fritterctl, an admin CLI that works directly on a
// Fritter data directory. Stop the server first: both backends hold an
// exclusive lock on their files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/di/providers"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the global flags shared by every subcommand.
type app struct {
	backend string
	dataDir string
	output  string
	out     io.Writer
	errOut  io.Writer
}

// engine is the set of services a command runs against.
type engine struct {
	users  *service.UserService
	freets *service.FreetService
	tags   *service.TagService
	flags  *service.FlagService
	feeds  *service.FeedService
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	rootCmd := &cobra.Command{
		Use:   "fritterctl",
		Short: "Inspect and administer a Fritter data directory",
		Long: `fritterctl opens a Fritter store directly and runs engine operations
against it. The server must not be running on the same data directory.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.output {
			case "json", "yaml":
			default:
				return fmt.Errorf("unknown output format %q (want json or yaml)", a.output)
			}
			switch a.backend {
			case config.BackendBadger, config.BackendSQLite:
			default:
				return fmt.Errorf("unknown backend %q (want badger or sqlite)", a.backend)
			}
			return nil
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&a.backend, "backend", config.BackendBadger, "Store backend: badger or sqlite")
	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", "~/Fritter/data", "Data directory")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "yaml", "Output format: json or yaml")

	rootCmd.AddCommand(
		a.usersCmd(),
		a.freetsCmd(),
		a.tagsCmd(),
		a.flagsCmd(),
		a.feedsCmd(),
	)
	return rootCmd
}

// run opens the store, runs fn, and closes the store again.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context, e *engine) (any, error)) error {
	dataDir, err := config.ExpandPath(a.dataDir, "")
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Writer:      a.errOut,
		Environment: "development",
		Level:       slog.LevelWarn,
		NoColor:     true,
	})

	st, err := providers.OpenStore(config.StoreConfig{Backend: a.backend, DataPath: dataDir}, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	e := &engine{
		users:  service.NewUserService(st, log.Component("user_service")),
		freets: service.NewFreetService(st, log.Component("freet_service")),
		tags:   service.NewTagService(st, log.Component("tag_service")),
		flags:  service.NewFlagService(st, log.Component("flag_service")),
		feeds:  service.NewFeedService(st, log.Component("feed_service")),
	}

	result, err := fn(cmd.Context(), e)
	if err != nil {
		return err
	}
	return a.print(result)
}

// print renders v in the selected format. YAML keys follow the JSON field
// names, so v is routed through JSON first.
func (a *app) print(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	if a.output == "json" {
		_, err = fmt.Fprintln(a.out, string(data))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
