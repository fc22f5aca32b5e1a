// Keep-alive visitor: periodically opens the watched pages in headless
// Chrome and serves the uptime status page.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"waketube/internal/browser"
	"waketube/internal/config"
	httprouter "waketube/internal/infrastructure/delivery/http"
	"waketube/internal/observability"
	"waketube/internal/pinger"
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

	metrics := observability.New()

	clock, err := pinger.NewBootClock(cfg.Pinger.BootFile, cfg.Pinger.VirtualStart, nil)
	if err != nil {
		log.ErrorContext(ctx, "boot clock", slog.Any("error", err))
		stop()
		os.Exit(1)
	}

	chrome := browser.New(log, cfg)
	defer chrome.Close()

	journal := pinger.NewVisitLog(cfg.Pinger.LogFile)
	loop := pinger.NewLoop(log, cfg, chrome, journal, metrics)

	go loop.Run(ctx)

	router := httprouter.NewStatus(log, cfg, clock, journal, metrics)

	httpSrv := httpserver.New(router, httpserver.Options{
		Addr:            cfg.HTTP.PingerPort,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	})

	log.InfoContext(ctx, "pinger started",
		slog.String("port", cfg.HTTP.PingerPort),
		slog.Time("real_start", clock.RealStart()))

	<-ctx.Done()

	if err := httpSrv.Shutdown(); err != nil {
		log.Error(err.Error())
	}

	log.InfoContext(ctx, "pinger shut down gracefully")
}
