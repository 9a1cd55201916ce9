package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/openregatta/timing-sync/internal/app"
	"github.com/openregatta/timing-sync/internal/config"
	"github.com/openregatta/timing-sync/internal/interfaces/statusapi"
	"github.com/openregatta/timing-sync/internal/platform/logging"
	"github.com/openregatta/timing-sync/internal/usecase"
)

func main() {
	pollMode := flag.Bool("poll", false, "keep polling the provider instead of a single import")
	eventID := flag.String("event-id", "60", "provider event id to import")
	intervalMinutes := flag.Int("interval", 5, "polling interval in minutes")
	filePath := flag.String("file", "", "import a saved payload file instead of calling the provider")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	runtime, err := app.NewRuntime(cfg, *eventID, time.Duration(*intervalMinutes)*time.Minute, logger)
	if err != nil {
		logger.Error("build runtime", "error", err)
		os.Exit(1)
	}
	defer func() { _ = runtime.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *filePath != "":
		if err := importFromFile(ctx, runtime.Ingest, *filePath); err != nil {
			logger.Error("import payload file", "file", *filePath, "error", err)
			os.Exit(1)
		}
		logger.Info("payload file imported", "file", *filePath)
	case *pollMode:
		if cfg.StatusEnabled {
			startStatusServer(ctx, cfg.StatusAddr, runtime.Poller, logger)
		}
		if err := runtime.Poller.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("polling stopped", "error", err)
			os.Exit(1)
		}
		logger.Info("polling stopped")
	default:
		if err := runtime.Poller.SyncOnce(ctx); err != nil {
			logger.Error("one-shot import failed", "event_id", *eventID, "error", err)
			os.Exit(1)
		}
		logger.Info("one-shot import complete", "event_id", *eventID)
	}
}

func importFromFile(ctx context.Context, ingest *usecase.IngestService, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read payload file: %w", err)
	}

	var payload usecase.Payload
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode payload file: %w", err)
	}

	return ingest.ProcessPayload(ctx, payload)
}

func startStatusServer(ctx context.Context, addr string, poller *usecase.Poller, logger *logging.Logger) {
	srv := statusapi.NewServer(addr, poller, logger)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			logger.Error("status server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("status server shutdown", "error", err)
		}
	}()
}
