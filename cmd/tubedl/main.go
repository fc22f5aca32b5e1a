// Download front-end: fetches video metadata and streams selected
// formats back over HTTP.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"waketube/internal/config"
	"waketube/internal/depmanager"
	"waketube/internal/download"
	"waketube/internal/extractor"
	httprouter "waketube/internal/infrastructure/delivery/http"
	"waketube/internal/observability"
	"waketube/internal/service"
	"waketube/internal/storage"
	httpserver "waketube/pkg/http/server"
	"waketube/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		slog.Error("config new", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Options{
		AddSource: true,
		Level:     cfg.App.LogLevel,
	})
	if err != nil {
		slog.WarnContext(ctx, "logger level invalid; defaulting to info", slog.Any("error", err))
	}

	depMgr := depmanager.New(log, cfg)
	metrics := observability.New()

	log.InfoContext(ctx, "checking if yt-dlp and ffmpeg are installed. it may take some time...")

	depMgr.Start(ctx)

	// The engine resolves its binaries through PATH.
	os.Setenv("PATH", cfg.DepManager.BinsDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	ext := extractor.New(log, cfg, metrics)
	dl := download.NewYTdlp(log, cfg, metrics)
	storer := storage.New(ctx, log, cfg, metrics)

	svc := service.New(log, cfg, ext, dl, extractor.AvailableFormats, storer)

	router := httprouter.New(log, cfg, svc, metrics)

	httpSrv := httpserver.New(router, httpserver.Options{
		Addr:            cfg.HTTP.DownloaderPort,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})

	log.InfoContext(ctx, "tubedl started", slog.String("port", cfg.HTTP.DownloaderPort))

	<-ctx.Done()

	if err := httpSrv.Shutdown(); err != nil {
		log.Error(err.Error())
	}

	log.InfoContext(ctx, "tubedl shut down gracefully")
}
