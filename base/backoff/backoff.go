package backoff

import (
	"context"
	"time"
)

// Strategy returns the wait before attempt n+1, n counts completed backoffs
type Strategy func(n int, start time.Duration) time.Duration

// Exponential doubles the wait on every attempt
func Exponential(n int, start time.Duration) time.Duration {
	if n > 30 {
		n = 30
	}
	return start << uint(n)
}

// Linear grows the wait by start on every attempt
func Linear(n int, start time.Duration) time.Duration {
	return time.Duration(n+1) * start
}

// Backoff sleeps with a growing wait, capped at limit when limit > 0.
// It is not safe for concurrent use.
type Backoff struct {
	LastDuration time.Duration
	NextDuration time.Duration

	strategy Strategy
	start    time.Duration
	limit    time.Duration
	count    int
}

func New(strategy Strategy, start, limit time.Duration) *Backoff {
	b := &Backoff{strategy: strategy, start: start, limit: limit}
	b.Reset()
	return b
}

func NewExponential(start, limit time.Duration) *Backoff {
	return New(Exponential, start, limit)
}

func NewLinear(start, limit time.Duration) *Backoff {
	return New(Linear, start, limit)
}

// Reset goes back to the first wait
func (b *Backoff) Reset() {
	b.count = 0
	b.LastDuration = 0
	b.NextDuration = b.next()
}

// Count returns how many times Backoff has completed since the last Reset
func (b *Backoff) Count() int {
	return b.count
}

// Backoff waits NextDuration, or returns ctx's error if it is done first
func (b *Backoff) Backoff(ctx context.Context) error {
	t := time.NewTimer(b.NextDuration)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	b.count++
	b.LastDuration = b.NextDuration
	b.NextDuration = b.next()
	return nil
}

func (b *Backoff) next() time.Duration {
	d := b.strategy(b.count, b.start)
	if b.limit > 0 && d > b.limit {
		d = b.limit
	}
	return d
}

// Retry runs fn, and runs it again after backing off as long as retryable(err)
// holds and fewer than maxRetries retries have been made. The last error is returned.
func Retry(ctx context.Context, b *Backoff, maxRetries int, retryable func(error) bool, fn func() error) error {
	err := fn()
	for retries := 0; err != nil && retries < maxRetries && retryable(err); retries++ {
		if berr := b.Backoff(ctx); berr != nil {
			return err
		}
		err = fn()
	}
	return err
}
