package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/smartcity/citydump"
	"github.com/smartcity/citydump/config"
	"github.com/spf13/cobra"
)

var version string

// app carries what the persistent flags resolved to. Every subcommand
// receives its settings from here rather than from package state.
type app struct {
	configFile string
	envFile    string
	database   string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{stdout: stdout}

	rootCmd := &cobra.Command{
		Use:   "cityadm",
		Short: "Back up, restore and inspect the Smart City database",
		Long: `cityadm writes the Smart City database out as a dump of INSERT statements,
replays such dumps into a database, and runs console statements guarded
against modifying restricted tables.

Dump sources may be a file path, "-" for stdin, or
local-git:///path/to/repo?file=backup.sql&commitish=HEAD.

The database is a mysql:// or postgres:// URI, taken from --database,
the CITYADM_DATABASE environment variable, or the config file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", config.DefaultEnvFile, "Dotenv file exporting "+config.DatabaseEnv)
	rootCmd.PersistentFlags().StringVarP(&a.database, "database", "d", "", "Database URI (overrides config and environment)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		a.newBackupCmd(),
		a.newRestoreCmd(),
		a.newSplitCmd(),
		a.newVerifyCmd(),
		a.newExecCmd(),
		a.newCitizenCmd(),
		a.newIncidentsCmd(),
		a.newVersionCmd(),
	)
	return rootCmd
}

func (a *app) setup() error {
	logLevel := slog.LevelInfo
	if a.verbose {
		logLevel = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: a.verbose,
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(a.logger)

	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.database != "" {
		cfg.Database = a.database
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func (a *app) signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			a.logger.Warn("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := version
			if v == "" {
				v = citydump.Version + " (custom build)"
			}
			fmt.Fprintf(a.stdout,
				"cityadm version %s, built with %s (%s/%s)\n",
				v,
				runtime.Version(),
				runtime.GOOS,
				runtime.GOARCH,
			)
			return nil
		},
	}
}
