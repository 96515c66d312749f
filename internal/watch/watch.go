// Package watch re-evaluates a predicate on a backoff schedule until it
// holds or a time budget runs out.
package watch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-retry"
)

// ErrTimeout is returned when the predicate never held within MaxElapsed.
var ErrTimeout = errors.New("watch: condition not met before deadline")

// Schedule is immediate, then exponential from Base, capped per step at
// MaxDelay, for at most MaxElapsed in total.
type Schedule struct {
	Base       time.Duration
	MaxDelay   time.Duration
	MaxElapsed time.Duration
}

// DefaultSchedule mirrors the page injection retries: a fast first retry,
// backing off to a few seconds, giving up after half a minute.
var DefaultSchedule = Schedule{Base: 250 * time.Millisecond, MaxDelay: 4 * time.Second, MaxElapsed: 30 * time.Second}

// Predicate reports whether the watched condition holds. A returned error
// aborts the watch.
type Predicate func(ctx context.Context) (bool, error)

var errNotYet = errors.New("not yet")

func (s Schedule) backoff() retry.Backoff {
	base := s.Base
	if base <= 0 {
		base = DefaultSchedule.Base
	}
	b := retry.NewExponential(base)
	if s.MaxDelay > 0 {
		b = retry.WithCappedDuration(s.MaxDelay, b)
	}
	max := s.MaxElapsed
	if max <= 0 {
		max = DefaultSchedule.MaxElapsed
	}
	return retry.WithMaxDuration(max, b)
}

// Until evaluates pred immediately and then on the schedule. It returns nil
// once pred holds, ErrTimeout when the budget is spent, the context error on
// cancellation, or pred's own error.
func Until(ctx context.Context, s Schedule, pred Predicate) error {
	attempt := 0
	err := retry.Do(ctx, s.backoff(), func(ctx context.Context) error {
		attempt++
		ok, err := pred(ctx)
		if err != nil {
			return err
		}
		if !ok {
			log.Debug().Int("attempt", attempt).Msg("watch: condition not met yet")
			return retry.RetryableError(errNotYet)
		}
		return nil
	})
	if errors.Is(err, errNotYet) {
		log.Warn().Int("attempts", attempt).Msg("watch: giving up")
		return ErrTimeout
	}
	return err
}
