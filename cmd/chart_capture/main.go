package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgnsrekt/fxboard/internal/capture"
	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/config"
	"github.com/dgnsrekt/fxboard/internal/logging"
)

var (
	configPath = flag.String("config", "", "Path to an optional YAML config file")
	once       = flag.Bool("once", false, "Capture the current hour once and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadCapture(*configPath)
	if err != nil {
		slog.Error("failed to load capture config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid capture config", "error", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.File); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	store, err := charts.NewStore(cfg.ImagesDir)
	if err != nil {
		slog.Error("failed to create chart store", "dir", cfg.ImagesDir, "error", err)
		os.Exit(1)
	}

	c := capture.New(capture.Config{
		CDPURL:       cfg.CDPURL(),
		ChartURL:     cfg.ChartURL,
		WaitSelector: cfg.WaitSelector,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Settle:       cfg.Settle,
		Timeout:      cfg.Timeout,
		Location:     loc,
	}, store)

	slog.Info("chart_capture config loaded",
		"cdp_url", cfg.CDPURL(),
		"chart_url", cfg.ChartURL,
		"minute", cfg.Minute,
		"images_dir", cfg.ImagesDir,
		"timezone", cfg.Timezone,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		if _, err := c.CaptureNow(ctx); err != nil {
			slog.Error("chart capture failed", "error", err)
			os.Exit(1)
		}
		return
	}

	task := c.NewTask(cfg.Minute)
	task.Start(ctx)

	<-ctx.Done()
	slog.Info("chart_capture stopping")
	task.Stop()
}
