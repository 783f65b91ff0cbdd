// Package worker runs the periodic background loops: price and FX
// refresh, and optional statement publishing. Workers only drive the
// read path -- they never mutate ledger state, so a refresh can never
// race an in-flight trade into using a stale validation.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Refresher refreshes one external data source (price cache warm, FX
// rate table).
type Refresher interface {
	Refresh(ctx context.Context) error
}

// QuoteWorker periodically refreshes external quotes and FX rates.
type QuoteWorker struct {
	refreshers []Refresher
	interval   time.Duration
}

// NewQuoteWorker creates a new QuoteWorker.
func NewQuoteWorker(interval time.Duration, refreshers ...Refresher) *QuoteWorker {
	return &QuoteWorker{
		refreshers: refreshers,
		interval:   interval,
	}
}

func (w *QuoteWorker) refreshAll(ctx context.Context) {
	for _, r := range w.refreshers {
		if err := r.Refresh(ctx); err != nil {
			slog.Error("QuoteWorker: refresh failed", "error", err)
		}
	}
}

// Run starts the quote worker loop. It blocks until the context is cancelled.
func (w *QuoteWorker) Run(ctx context.Context) {
	slog.Info("QuoteWorker: starting")

	// Refresh immediately on startup
	w.refreshAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("QuoteWorker: shutting down")
			return
		case <-ticker.C:
			w.refreshAll(ctx)
			slog.Info("QuoteWorker: refresh completed")
		}
	}
}
