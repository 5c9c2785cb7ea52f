package session

import "time"

// Config tunes the synchronization policy.
type Config struct {
	// DebounceWindow is how long the syncer waits for further mutations
	// before writing.
	DebounceWindow time.Duration
	// SaveTimeout bounds a single write.
	SaveTimeout time.Duration

	PollInitialInterval time.Duration
	PollMultiplier      float64
	PollMaxInterval     time.Duration
	PollMaxAttempts     uint
	PollMaxElapsed      time.Duration
}

// DefaultConfig returns the production policy.
func DefaultConfig() Config {
	return Config{
		DebounceWindow:      1500 * time.Millisecond,
		SaveTimeout:         10 * time.Second,
		PollInitialInterval: 3 * time.Second,
		PollMultiplier:      1.5,
		PollMaxInterval:     30 * time.Second,
		PollMaxAttempts:     20,
		PollMaxElapsed:      15 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = d.DebounceWindow
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = d.SaveTimeout
	}
	if c.PollInitialInterval <= 0 {
		c.PollInitialInterval = d.PollInitialInterval
	}
	if c.PollMultiplier < 1 {
		c.PollMultiplier = d.PollMultiplier
	}
	if c.PollMaxInterval <= 0 {
		c.PollMaxInterval = d.PollMaxInterval
	}
	if c.PollMaxAttempts == 0 {
		c.PollMaxAttempts = d.PollMaxAttempts
	}
	if c.PollMaxElapsed <= 0 {
		c.PollMaxElapsed = d.PollMaxElapsed
	}
	return c
}
