// Package main provides the CLI entrypoint for powerpanel.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/powerpanel/internal/appearance"
	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/dbus"
	"github.com/jmylchreest/powerpanel/internal/theme"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// commandTimeout bounds every daemon round trip made by a command.
const commandTimeout = 10 * time.Second

// errDaemonNotRunning is returned by commands that need powerpaneld.
var errDaemonNotRunning = errors.New("powerpaneld is not running")

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "powerpanel",
	Short: "Power panel control and theme settings",
	Long: `powerpanel controls the powerpaneld power panel.

It lists and selects panel themes, changes the accent color, toggles the
panel and triggers power actions over the session bus.

Running powerpanel without a subcommand launches the interactive settings TUI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSettings(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/powerpanel/config.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// connect opens a client and checks that the daemon owns its bus name.
func connect(ctx context.Context) (*dbus.Client, error) {
	client, err := dbus.NewClient(logger)
	if err != nil {
		return nil, err
	}
	if !client.Running(ctx) {
		_ = client.Close()
		return nil, errDaemonNotRunning
	}
	return client, nil
}

// withClient runs fn against the daemon with the command timeout applied.
func withClient(fn func(ctx context.Context, client *dbus.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	return fn(ctx, client)
}

// localStore builds a theme store over the configured roots.
func localStore() *theme.Store {
	return theme.NewStore(cfg.Themes.BuiltinDir, cfg.Themes.CustomDir, logger)
}

// localSelections builds a selection store the way the daemon does.
func localSelections() *config.SelectionStore {
	var reader appearance.SchemeReader
	if portal, err := appearance.NewPortalReader(); err == nil {
		reader = portal
	} else {
		logger.Debug("portal unavailable", "error", err)
	}
	detector := appearance.NewDetector(reader, logger)
	scheme := config.ColorScheme(cfg.Appearance.ColorScheme)
	return config.NewSelectionStore(config.SelectionPath(), detector.Func(scheme), logger)
}
