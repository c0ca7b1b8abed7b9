// Package retry runs an operation under a bounded exponential backoff policy.
package retry

import (
	"context"
	"time"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	// Retryable decides whether a failed attempt may be retried. Nil retries nothing.
	Retryable func(error) bool
	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Result describes how a Do call ended.
type Result struct {
	Attempts  int
	Exhausted bool // the last error was retryable but no attempts were left
}

// Delay returns the wait before attempt n+1, where n is the number of
// attempts already made (1-based).
func (p Policy) Delay(n int) time.Duration {
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= p.Multiplier
	}
	return time.Duration(d)
}

// Do calls op until it succeeds, returns a non-retryable error, or the
// policy runs out of attempts. The error of the last attempt is returned.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) (Result, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var res Result
	for {
		res.Attempts++
		err := op(ctx, res.Attempts)
		if err == nil {
			return res, nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			return res, err
		}
		if res.Attempts >= maxAttempts {
			res.Exhausted = true
			return res, err
		}
		if serr := sleep(ctx, p.Delay(res.Attempts)); serr != nil {
			return res, serr
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
