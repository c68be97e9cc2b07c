// Package main is the entry point for the powerpaneld daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/jmylchreest/powerpanel/internal/action"
	"github.com/jmylchreest/powerpanel/internal/appearance"
	"github.com/jmylchreest/powerpanel/internal/audio"
	"github.com/jmylchreest/powerpanel/internal/config"
	"github.com/jmylchreest/powerpanel/internal/daemon"
	"github.com/jmylchreest/powerpanel/internal/dbus"
	"github.com/jmylchreest/powerpanel/internal/panel"
	"github.com/jmylchreest/powerpanel/internal/theme"
	"github.com/jmylchreest/powerpanel/internal/themesync"
	"github.com/jmylchreest/powerpanel/internal/visibility"
)

const appID = "io.github.jmylchreest.powerpaneld"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/powerpanel/config.toml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("powerpaneld version", version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level, *debug)
	slog.SetDefault(logger)

	path := *configPath
	if path == "" {
		path = config.ConfigPath()
	}
	os.Exit(run(cfg, path, logger))
}

// newLogger builds the stderr text logger for the configured level.
func newLogger(level string, debug bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if debug {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// actionRunner dispatches power actions and reports failures to the desktop.
type actionRunner struct {
	dispatcher *action.Dispatcher
	notifier   *daemon.InternalNotifier
	logger     *slog.Logger
}

func (r *actionRunner) Dispatch(ctx context.Context, id string) {
	err := r.dispatcher.Perform(ctx, id)
	if err == nil {
		return
	}
	r.logger.Error("action failed", "action", id, "error", err)
	r.notifier.NotifyActionFailed(id, err)
}

// watchMissingThemes notifies the user when a selection names a theme that
// no longer resolves.
func watchMissingThemes(ctx context.Context, conn *themesync.Conn, notifier *daemon.InternalNotifier) {
	defer conn.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.Events():
			if !ok {
				return
			}
			if applied, isApplied := msg.(themesync.ThemeApplied); isApplied && !applied.Resolved() {
				notifier.NotifyThemeMissing(applied.Name)
			}
		}
	}
}

func run(cfg *config.Config, configPath string, logger *slog.Logger) int {
	logger.Info("starting powerpaneld", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Theme roots
	if installed, err := theme.InstallBundled(cfg.Themes.BuiltinDir); err != nil {
		logger.Error("failed to install bundled themes", "path", cfg.Themes.BuiltinDir, "error", err)
	} else if len(installed) > 0 {
		logger.Info("installed bundled themes", "path", cfg.Themes.BuiltinDir, "themes", installed)
	}
	store := theme.NewStore(cfg.Themes.BuiltinDir, cfg.Themes.CustomDir, logger)
	store.EnsureCustomDir()

	// Selection document
	var reader appearance.SchemeReader
	if portal, err := appearance.NewPortalReader(); err == nil {
		reader = portal
	} else {
		logger.Warn("desktop portal unavailable, using environment for color scheme", "error", err)
	}
	detector := appearance.NewDetector(reader, logger)
	selections := config.NewSelectionStore(config.SelectionPath(),
		detector.Func(config.ColorScheme(cfg.Appearance.ColorScheme)), logger)

	// Controller
	ctrl := themesync.NewController(store, selections, logger)
	go func() {
		if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("theme controller stopped", "error", err)
		}
	}()

	catalogWatcher, err := theme.NewCatalogWatcher(logger, cfg.Themes.BuiltinDir, cfg.Themes.CustomDir)
	if err != nil {
		logger.Warn("failed to create theme watcher", "error", err)
	} else {
		catalogWatcher.SetChangeCallback(ctrl.RefreshCatalog)
		if err := catalogWatcher.Start(ctx); err != nil {
			logger.Warn("failed to start theme watcher", "error", err)
		}
	}

	// Audio and actions
	audioManager := audio.NewManager(cfg, logger)
	if err := audioManager.Start(ctx); err != nil {
		logger.Warn("failed to start audio manager", "error", err)
	}

	var dispatchOpts []action.Option
	dispatchOpts = append(dispatchOpts, action.WithLogger(logger), action.WithSounder(audioManager))
	if logind, err := action.NewLogind(logger); err == nil {
		dispatchOpts = append(dispatchOpts, action.WithPowerManager(logind))
	} else {
		logger.Warn("logind unavailable, using commands", "error", err)
	}
	dispatcher := action.NewDispatcher(cfg, dispatchOpts...)

	// D-Bus service
	server := dbus.NewServer(ctrl, logger)
	server.SetThemeFolder(cfg.Themes.CustomDir)
	if err := server.Start(ctx); err != nil {
		logger.Error("failed to start D-Bus server", "error", err)
		return 1
	}

	notifier := daemon.NewInternalNotifier(logger)
	notifier.SetNotifyFunc(daemon.DesktopNotify(server.Connection()))
	go watchMissingThemes(ctx, ctrl.Connect("notifier"), notifier)

	runner := &actionRunner{dispatcher: dispatcher, notifier: notifier, logger: logger}
	server.SetActions(runner)

	configWatcher := daemon.NewConfigWatcher(configPath, logger)
	configWatcher.SetReloadCallback(func(newConfig *config.Config) {
		audioManager.UpdateConfig(newConfig)
		dispatcher.UpdateConfig(newConfig)
		if newConfig.Themes != cfg.Themes {
			logger.Warn("theme folders changed, restart powerpaneld to apply",
				"builtin", newConfig.Themes.BuiltinDir, "custom", newConfig.Themes.CustomDir)
		}
		notifier.NotifyConfigReloaded()
	})
	configWatcher.SetErrorCallback(notifier.NotifyConfigError)
	if err := configWatcher.Start(ctx, cfg); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	// GTK presenter
	app := adw.NewApplication(appID, 0)
	guard := visibility.NewGuard()

	var (
		powerPanel *panel.Panel
		running    atomic.Bool
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
		glib.IdleAdd(func() {
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			// A second launch toggles the running panel.
			if powerPanel != nil {
				go powerPanel.Toggle()
			}
			return
		}
		running.Store(true)

		powerPanel = panel.New(&app.Application, configWatcher.CurrentConfig(), guard, logger)
		powerPanel.SetActionHandler(func(id string) {
			runner.Dispatch(ctx, id)
		})
		server.SetPanel(powerPanel)

		link := ctrl.Connect("panel")
		applier := themesync.NewApplier(powerPanel, logger)
		go applier.Run(ctx, link.Events())
		if err := link.Hello(); err != nil {
			logger.Error("failed to request initial theme", "error", err)
		}

		logger.Info("powerpaneld ready", "service", dbus.ServiceName, "themes", len(store.Scan()))
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		cancel()
		configWatcher.Stop()
		if catalogWatcher != nil {
			catalogWatcher.Stop()
		}
		audioManager.Stop()
		if err := server.Stop(); err != nil {
			logger.Warn("failed to release bus name", "error", err)
		}
		if powerPanel != nil {
			powerPanel.Close()
		}
		running.Store(false)
	})

	status := app.Run([]string{os.Args[0]})
	if status != 0 {
		logger.Error("application exited with error", "status", status)
	}
	return status
}
