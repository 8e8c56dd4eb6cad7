package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/fxboard/internal/api"
	"github.com/dgnsrekt/fxboard/internal/auth"
	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/config"
	"github.com/dgnsrekt/fxboard/internal/dashboard"
	"github.com/dgnsrekt/fxboard/internal/feed"
	"github.com/dgnsrekt/fxboard/internal/logging"
	"github.com/dgnsrekt/fxboard/internal/netutil"
	"github.com/dgnsrekt/fxboard/internal/notify"
	"github.com/dgnsrekt/fxboard/internal/refresh"
	"github.com/dgnsrekt/fxboard/internal/relay"
	"github.com/dgnsrekt/fxboard/internal/signals"
	"github.com/dgnsrekt/fxboard/internal/storage"
	"github.com/dgnsrekt/fxboard/internal/view"
)

var configPath = flag.String("config", "", "Path to an optional YAML config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.File); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("fxboard config loaded",
		"bind_addr", cfg.Server.BindAddr,
		"public_dir", cfg.Server.PublicDir,
		"timezone", cfg.Server.Timezone,
		"feed_base_url", cfg.Feed.BaseURL,
		"reload_minute", cfg.Refresh.ReloadMinute,
		"poll_interval", cfg.Refresh.PollInterval,
		"db_path", cfg.Storage.DBPath,
		"images_dir", cfg.Charts.ImagesDir,
		"log_level", cfg.Logging.Level,
	)

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "timezone", cfg.Server.Timezone, "error", err)
		os.Exit(1)
	}

	kv, err := storage.OpenKV(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open password store", "path", cfg.Storage.DBPath, "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			slog.Error("password store close failed", "error", err)
		}
	}()

	authenticator := auth.New(auth.NewFallbackStore(kv), auth.Config{
		DefaultLoginPassword: cfg.Auth.DefaultLoginPassword,
		AdminPassword:        cfg.Auth.AdminPassword,
		SecureCookie:         cfg.Auth.SecureCookie,
	})

	var fetcher *feed.Client
	if cfg.Feed.BaseURL != "" {
		fetcher = feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout)
	} else {
		fetcher = feed.NewFileClient(cfg.Server.PublicDir)
	}

	grid, images := loadCharts(cfg)

	broker := relay.NewBroker()
	var history *storage.History
	if cfg.Storage.HistoryDir != "" {
		history = storage.NewHistory(cfg.Storage.HistoryDir, cfg.Storage.HistoryBuffer, cfg.Storage.HistoryMaxSizeMB)
		defer func() {
			if err := history.Close(); err != nil {
				slog.Error("history close failed", "error", err)
			}
		}()
	}

	loader := view.NewLoader(fetcher, view.NewState(), loc)
	loader.OnUpdate(dashboard.Hooks{
		Broker:        broker,
		History:       history,
		Watcher:       newWatcher(cfg),
		NotifyTimeout: cfg.Notify.Timeout,
	}.OnUpdate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, src := range signals.Sources {
		if _, err := loader.Load(ctx, src); err != nil {
			slog.Warn("initial load failed; will retry on schedule", "source", src, "error", err)
		}
	}

	sched := refresh.NewScheduler(loader, refresh.DefaultConfig(signals.Sources, cfg.Refresh.ReloadMinute, cfg.Refresh.PollInterval, loc))
	sched.Start(ctx)

	svc := dashboard.NewService(dashboard.Options{
		Loader:    loader,
		Auth:      authenticator,
		Grid:      grid,
		Images:    images,
		Scheduler: sched,
		Broker:    broker,
	})

	imagesDir := ""
	if images != nil {
		imagesDir = images.Dir()
	}
	h := api.NewServer(svc, api.Options{
		Gate:      auth.DefaultGateConfig(),
		Limiter:   auth.NewLoginLimiter(cfg.Auth.LoginPerMinute, cfg.Auth.LoginBurst),
		Broker:    broker,
		PublicDir: cfg.Server.PublicDir,
		ImagesDir: imagesDir,
	})

	ln, err := netutil.Listen(cfg.Server.BindAddr, cfg.Server.FallbackAddrs)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.Server.BindAddr, "error", err)
		os.Exit(1)
	}
	addr := ln.Addr().String()

	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("fxboard listening", "addr", addr, "docs", "http://"+addr+"/docs")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("fxboard server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("fxboard shutting down")
	sched.Stop()
	broker.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("fxboard shutdown failed", "error", err)
	}
}

// loadCharts opens the verification grid. A missing grid file turns the
// grid off rather than failing startup.
func loadCharts(cfg *config.Config) (*charts.Grid, *charts.Store) {
	if cfg.Charts.GridFile == "" {
		return nil, nil
	}
	grid, err := charts.LoadGrid(cfg.Charts.GridFile)
	if err != nil {
		slog.Warn("chart grid disabled", "file", cfg.Charts.GridFile, "error", err)
		return nil, nil
	}
	store, err := charts.NewStore(cfg.Charts.ImagesDir)
	if err != nil {
		slog.Warn("chart image store unavailable", "dir", cfg.Charts.ImagesDir, "error", err)
		return grid, nil
	}
	return grid, store
}

func newWatcher(cfg *config.Config) *notify.TopPickWatcher {
	client := &http.Client{Timeout: cfg.Notify.Timeout}
	var targets notify.Multi
	if cfg.Notify.NTFYURL != "" {
		targets = append(targets, notify.NewNTFY(cfg.Notify.NTFYURL, client))
	}
	if cfg.Notify.Telegram.Enabled {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID, client)
		if err != nil {
			slog.Error("telegram notifier disabled", "error", err)
		} else {
			targets = append(targets, tg)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return notify.NewTopPickWatcher(targets)
}
