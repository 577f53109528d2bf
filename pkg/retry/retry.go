// Package retry provides a small retry policy with exponential backoff and
// jitter, shared by the HTTP fetcher and the coverage validator's LLM calls.
package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"med-scraper/pkg/utils"
)

// Policy describes a bounded retry schedule.
type Policy struct {
	MaxAttempts  int           // Total attempts including the first (minimum 1)
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Cap on the backoff delay
}

// Backoff returns the delay to apply before the given retry attempt
// (attempt 1 is the first retry). The schedule is initial * 2^(attempt-1),
// capped at MaxDelay, with +/- 10% jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	backoff := float64(p.InitialDelay) * math.Pow(2, float64(attempt-1))
	delay := time.Duration(backoff)
	if delay <= 0 || delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	var jitter time.Duration
	if delay > 0 {
		jitterRange := int64(delay) / 5 // 20% range width for +/-10%
		if jitterRange > 0 {
			jitter = time.Duration(rand.Int63n(jitterRange)) - (delay / 10)
		}
	}
	final := delay + jitter
	if final < 0 {
		final = 0
	}
	return final
}

// Do invokes op until it succeeds, the attempt cap is reached, or op reports
// a permanent failure. op returns (retryable, err); a nil err stops the loop
// immediately. Context cancellation is honored during backoff sleeps.
func (p Policy) Do(ctx context.Context, log *logrus.Entry, op func() (retryable bool, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.Backoff(attempt)
			log.WithFields(logrus.Fields{"attempt": attempt, "max_attempts": attempts, "delay": delay}).Warn("Retrying...")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("context cancelled (%v) during retry backoff after error: %w", ctx.Err(), lastErr)
			}
		}

		retryable, err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			return err
		}
		log.WithField("attempt", attempt).Warnf("Attempt failed: %v", err)
	}

	return fmt.Errorf("%w: %w", utils.ErrRetryFailed, lastErr)
}
