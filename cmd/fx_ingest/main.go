package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgnsrekt/fxboard/internal/config"
	"github.com/dgnsrekt/fxboard/internal/ingest"
	"github.com/dgnsrekt/fxboard/internal/logging"
)

var (
	configPath = flag.String("config", "", "Path to an optional YAML config file")
	once       = flag.Bool("once", false, "Copy the files once and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadIngest(*configPath)
	if err != nil {
		slog.Error("failed to load ingest config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid ingest config", "error", err)
		os.Exit(1)
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.File); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("fx_ingest started",
		"source_dir", cfg.SourceDir,
		"dest_dir", cfg.DestDir,
		"minute", cfg.Minute,
		"files", len(cfg.Files),
	)
	ingest.CheckSources(cfg.Files)

	if *once {
		if ingest.CopyAll(cfg.Files) == 0 {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	task := ingest.NewTask(cfg.Files, cfg.Minute)
	task.Start(ctx)
	slog.Info("fx_ingest waiting for the next run", "minute", cfg.Minute)

	<-ctx.Done()
	slog.Info("fx_ingest stopping")
	task.Stop()
}
