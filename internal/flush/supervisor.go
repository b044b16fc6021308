// Package flush runs the periodic flush cycle (spec §4.6, §4.13): a
// ticker fires every configured interval and dispatches a Writer.Flush
// onto a bounded worker pool, and on shutdown a final flush runs with a
// bounded deadline so in-flight events are not dropped.
package flush

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mallardmetrics/mallard/internal/logger"
	"github.com/mallardmetrics/mallard/internal/workerpool"
)

// maxFlushAttempts bounds retries of a single flush cycle: a partition
// write failure is usually transient (disk contention, a momentary engine
// hiccup), but rows already sit safely in the hot table either way, so
// retrying a few times within the same cycle is pure upside.
const maxFlushAttempts = 3

// Flusher is the subset of storage.Writer the supervisor needs, kept as
// an interface so this package does not import internal/storage.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Supervisor runs f on a timer until ctx is canceled, then performs one
// final bounded flush before returning. It also flushes early whenever
// Trigger is signaled, e.g. by the ingestion orchestrator when the buffer
// crosses its configured flush threshold (spec §4.11 step 9).
type Supervisor struct {
	f        Flusher
	interval time.Duration
	pool     *workerpool.Pool
	trigger  chan struct{}
}

// New returns a supervisor flushing f every interval, dispatched through
// pool.
func New(f Flusher, interval time.Duration, pool *workerpool.Pool) *Supervisor {
	return &Supervisor{f: f, interval: interval, pool: pool, trigger: make(chan struct{}, 1)}
}

// Trigger requests an out-of-band flush at the next opportunity, without
// blocking the caller: a pending trigger is coalesced with any other
// pending trigger, since a flush drains the whole buffer regardless of
// how many callers asked for one.
func (s *Supervisor) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is canceled. It is meant to be launched in its own
// goroutine by the caller (typically cmd/mallard's main).
func (s *Supervisor) Run(ctx context.Context, shutdownTimeout time.Duration) {
	logger.Get().Debug().Dur("interval", s.interval).Msg("flush supervisor started")
	tick := time.NewTicker(s.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			s.finalFlush(shutdownTimeout)
			return
		case <-tick.C:
			s.submitFlush("scheduled flush failed")
		case <-s.trigger:
			s.submitFlush("threshold-triggered flush failed")
		}
	}
}

func (s *Supervisor) submitFlush(failMsg string) {
	s.pool.Submit(func(jobCtx context.Context) error {
		if err := s.retryFlush(jobCtx); err != nil {
			logger.Get().Error().Err(err).Msg(failMsg)
		}
		return nil
	})
}

// finalFlush runs on shutdown with its own bounded deadline, independent
// of the (already canceled) supervisor context.
func (s *Supervisor) finalFlush(timeout time.Duration) {
	logger.Get().Info().Dur("timeout", timeout).Msg("running final flush before shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.retryFlush(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("final flush failed, unflushed events are lost on exit")
	}
}

// retryFlush retries a failing flush with exponential backoff, bounded by
// both ctx and maxFlushAttempts, so a momentary disk or engine hiccup
// doesn't sit a whole cycle's worth of rows in the hot table longer than
// necessary.
func (s *Supervisor) retryFlush(ctx context.Context) error {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFlushAttempts-1), ctx)
	return backoff.Retry(func() error {
		return s.f.Flush(ctx)
	}, b)
}
