package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/pictocat/pictocat/internal/profile"
)

// WaitForProfile fetches the profile once and, while the gateway reports it
// as not provisioned, polls with exponential backoff until it appears, the
// attempt cap is reached or ctx is cancelled. Any other error stops polling
// at once.
func WaitForProfile(ctx context.Context, fetcher ProfileFetcher, cfg Config, logger *slog.Logger) (profile.Profile, error) {
	cfg = cfg.withDefaults()

	attempts := 0
	op := func() (profile.Profile, error) {
		attempts++
		p, err := fetcher.FetchProfile(ctx)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, ErrProfileNotFound) {
			return profile.Profile{}, err
		}
		return profile.Profile{}, backoff.Permanent(err)
	}

	policy := &backoff.ExponentialBackOff{
		InitialInterval:     cfg.PollInitialInterval,
		RandomizationFactor: 0,
		Multiplier:          cfg.PollMultiplier,
		MaxInterval:         cfg.PollMaxInterval,
	}

	p, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(cfg.PollMaxAttempts),
		backoff.WithMaxElapsedTime(cfg.PollMaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Info("profile not provisioned yet, polling",
				slog.Int("attempt", attempts), slog.Duration("next", next))
		}),
	)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return profile.Profile{}, fmt.Errorf("after %d attempts: %w", attempts, err)
		}
		return profile.Profile{}, err
	}
	if attempts > 1 {
		logger.Info("profile provisioned", slog.Int("attempts", attempts))
	}
	return p, nil
}
