package worker

import (
	"context"
	"log/slog"
	"time"
)

// Publisher pushes the current statements to an external destination.
type Publisher interface {
	Publish(ctx context.Context) error
}

// StatementWorker periodically publishes account statements.
type StatementWorker struct {
	publisher Publisher
	interval  time.Duration
}

// NewStatementWorker creates a new StatementWorker.
func NewStatementWorker(publisher Publisher, interval time.Duration) *StatementWorker {
	return &StatementWorker{
		publisher: publisher,
		interval:  interval,
	}
}

// Run starts the statement worker loop. It blocks until the context is cancelled.
func (w *StatementWorker) Run(ctx context.Context) {
	slog.Info("StatementWorker: starting")

	if err := w.publisher.Publish(ctx); err != nil {
		slog.Error("StatementWorker: initial publish failed", "error", err)
	} else {
		slog.Info("StatementWorker: initial publish completed")
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("StatementWorker: shutting down")
			return
		case <-ticker.C:
			if err := w.publisher.Publish(ctx); err != nil {
				slog.Error("StatementWorker: publish failed", "error", err)
			} else {
				slog.Info("StatementWorker: publish completed")
			}
		}
	}
}
