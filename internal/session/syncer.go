package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pictocat/pictocat/internal/userdata"
)

// Syncer debounces snapshot writes. It keeps a single pending slot: every
// Schedule replaces it and restarts the timer, so only the latest snapshot
// is ever sent. Each write is tagged with the next version after the
// baseline the profile was loaded with; starting a write cancels the one
// still in flight. Write failures are logged and dropped.
type Syncer struct {
	saver   Saver
	window  time.Duration
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	pending  *userdata.UserData
	version  int64
	inflight context.CancelFunc
	closed   bool

	kick    chan struct{}
	flushes chan chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	writes  sync.WaitGroup
}

// NewSyncer starts the worker goroutine. baseline is the version of the
// document the session loaded.
func NewSyncer(saver Saver, baseline int64, cfg Config, logger *slog.Logger) *Syncer {
	cfg = cfg.withDefaults()
	s := &Syncer{
		saver:   saver,
		window:  cfg.DebounceWindow,
		timeout: cfg.SaveTimeout,
		logger:  logger,
		version: baseline,
		kick:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// Schedule queues data for the next write and restarts the debounce timer.
func (s *Syncer) Schedule(data userdata.UserData) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	snapshot := data.Clone()
	s.pending = &snapshot
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Pending reports whether a snapshot is waiting for the timer.
func (s *Syncer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Version returns the version of the most recently dispatched write.
func (s *Syncer) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Flush writes the pending snapshot immediately and waits for it.
func (s *Syncer) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case s.flushes <- reply:
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes what is pending and stops the worker. Further schedules are
// ignored.
func (s *Syncer) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	<-s.stopped
}

func (s *Syncer) run() {
	defer close(s.stopped)

	timer := time.NewTimer(s.window)
	stopTimer(timer)

	for {
		select {
		case <-s.kick:
			stopTimer(timer)
			timer.Reset(s.window)
		case <-timer.C:
			s.dispatch()
		case reply := <-s.flushes:
			stopTimer(timer)
			s.dispatch()
			s.writes.Wait()
			close(reply)
		case <-s.done:
			stopTimer(timer)
			s.dispatch()
			s.writes.Wait()
			return
		}
	}
}

// dispatch takes the pending snapshot and writes it in the background.
func (s *Syncer) dispatch() {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return
	}
	data := *s.pending
	s.pending = nil
	if s.inflight != nil {
		s.inflight()
	}
	s.version++
	version := s.version
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	s.inflight = cancel
	s.mu.Unlock()

	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		defer cancel()
		s.write(ctx, data, version)
	}()
}

func (s *Syncer) write(ctx context.Context, data userdata.UserData, version int64) {
	res, err := s.saver.SaveUserData(ctx, data, version)
	switch {
	case errors.Is(err, context.Canceled):
		s.logger.Debug("user data save superseded", slog.Int64("version", version))
	case err != nil:
		s.logger.Error("user data save failed", slog.Int64("version", version), slog.Any("error", err))
	case !res.Applied:
		s.logger.Warn("user data save ignored as stale",
			slog.Int64("version", version), slog.Int64("stored_version", res.Version))
	default:
		s.logger.Debug("user data saved", slog.Int64("version", version))
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
