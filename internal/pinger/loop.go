package pinger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"waketube/internal/config"
	"waketube/internal/consts"
	"waketube/internal/errs"
	"waketube/internal/observability"
)

// Visitor performs one page visit. Implementations must honor ctx
// cancellation.
type Visitor interface {
	Visit(ctx context.Context, url string) error
}

// Loop is the background visitor: every interval it re-reads the URL list,
// visits each URL once and appends one batch of log lines. A failed visit
// is logged and the iteration moves on; nothing is retried.
type Loop struct {
	log     *slog.Logger
	cfg     *config.Config
	visitor Visitor
	journal *VisitLog
	metrics *observability.Metrics
}

// NewLoop builds a visitor loop. It does not start anything; Run is the
// loop and is meant to be started exactly once by main.
func NewLoop(log *slog.Logger, cfg *config.Config, visitor Visitor, journal *VisitLog, metrics *observability.Metrics) *Loop {
	return &Loop{
		log:     log.With(slog.String("package", "pinger")),
		cfg:     cfg,
		visitor: visitor,
		journal: journal,
		metrics: metrics,
	}
}

// Run iterates until ctx is cancelled. The first iteration runs
// immediately; later ones follow the configured interval.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.Pinger.Interval)
	defer ticker.Stop()

	l.iterate(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.InfoContext(ctx, "visitor loop stopped", slog.Any("error", ctx.Err()))

			return
		case <-ticker.C:
			l.iterate(ctx)
		}
	}
}

func (l *Loop) iterate(ctx context.Context) {
	now := time.Now().Format(consts.TimeLayout)
	stamp := "[" + now + "]"

	urls, err := l.readWeblist()
	if errors.Is(err, errs.ErrWeblistMissing) {
		line := fmt.Sprintf("%s %s %s not found.", stamp, consts.VisitFail, l.cfg.Pinger.Weblist)
		l.appendLines(ctx, []string{line})
		l.metrics.RecordIteration(0)

		return
	}

	if err != nil {
		l.log.ErrorContext(ctx, "read weblist", slog.Any("error", err))
		l.metrics.RecordIteration(0)

		return
	}

	lines := make([]string, 0, len(urls))

	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}

		lines = append(lines, l.visit(ctx, stamp, url))
	}

	l.appendLines(ctx, lines)
	l.metrics.RecordIteration(len(urls))
}

func (l *Loop) visit(ctx context.Context, stamp, url string) string {
	visitCtx := ctx

	if l.cfg.Pinger.VisitTimeout > 0 {
		var cancel context.CancelFunc

		visitCtx, cancel = context.WithTimeout(ctx, l.cfg.Pinger.VisitTimeout)
		defer cancel()
	}

	started := time.Now()
	err := l.visitor.Visit(visitCtx, url)
	elapsed := time.Since(started)

	if err != nil {
		l.log.WarnContext(ctx, "visit failed", slog.String("url", url), slog.Any("error", err))
		l.metrics.RecordVisit("error", elapsed)

		return fmt.Sprintf("%s %s %s → Error: %s", stamp, consts.VisitFail, url, err.Error())
	}

	l.log.DebugContext(ctx, "visit ok", slog.String("url", url), slog.Duration("elapsed", elapsed))
	l.metrics.RecordVisit("ok", elapsed)

	return fmt.Sprintf("%s %s %s → 200", stamp, consts.VisitOK, url)
}

func (l *Loop) readWeblist() ([]string, error) {
	data, err := os.ReadFile(l.cfg.Pinger.Weblist)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrWeblistMissing
	}

	if err != nil {
		return nil, fmt.Errorf("read weblist: %w", err)
	}

	var urls []string

	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			urls = append(urls, line)
		}
	}

	return urls, nil
}

func (l *Loop) appendLines(ctx context.Context, lines []string) {
	if err := l.journal.Append(lines); err != nil {
		l.log.ErrorContext(ctx, "append visit log", slog.Any("error", err))
	}
}
