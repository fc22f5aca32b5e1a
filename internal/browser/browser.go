// Package browser drives a headless Chrome instance used to visit the
// watched pages. Each visit opens a fresh tab so a wedged page cannot
// poison later visits.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/chromedp"

	"waketube/internal/config"
)

type Browser struct {
	log *slog.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func New(log *slog.Logger, cfg *config.Config) *Browser {
	log = log.With(slog.String("package", "browser"))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("headless", cfg.Pinger.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		log:         log,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Visit loads url in a new tab and waits for the navigation to settle.
func (b *Browser) Visit(ctx context.Context, url string) error {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	defer cancel()

	// Tab contexts descend from the allocator, not from the caller, so
	// propagate cancellation by hand.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(tabCtx, chromedp.Navigate(url)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("navigate %q: %w", url, err)
	}

	return nil
}

// Close shuts down the underlying Chrome process.
func (b *Browser) Close() {
	b.allocCancel()
	b.log.Debug("browser closed")
}
