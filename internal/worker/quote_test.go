package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(_ context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestQuoteWorkerRefreshesAllOnStartup(t *testing.T) {
	a := &countingRefresher{}
	b := &countingRefresher{err: errors.New("feed down")}
	c := &countingRefresher{}

	w := NewQuoteWorker(time.Hour, a, b, c)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for c.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker did not refresh on startup")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// One failing refresher must not stop the others.
	if a.calls.Load() != 1 || b.calls.Load() != 1 || c.calls.Load() != 1 {
		t.Errorf("calls = %d/%d/%d, want 1 each", a.calls.Load(), b.calls.Load(), c.calls.Load())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not shut down on cancel")
	}
}

type countingPublisher struct {
	calls atomic.Int32
}

func (p *countingPublisher) Publish(_ context.Context) error {
	p.calls.Add(1)
	return nil
}

func TestStatementWorkerPublishesOnStartup(t *testing.T) {
	p := &countingPublisher{}
	w := NewStatementWorker(p, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for p.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker did not publish on startup")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not shut down on cancel")
	}
}
