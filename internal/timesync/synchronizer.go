// Package timesync derives the controller wall clock from the Date header of
// a remote web server and keeps it between synchronizations.
package timesync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/iudanet/otagate/internal/caltime"
	"github.com/iudanet/otagate/internal/server/storage"
)

// DefaultInterval is the retry interval while the clock is unsynced
const DefaultInterval = time.Hour

// Status is a snapshot of the controller clock.
type Status struct {
	Epoch    int64 // локальное время, секунды
	LastSync int64 // локальное время последней успешной синхронизации, 0 если не было
	Synced   bool
	DST      bool
}

// Synchronizer owns the time state. Sync installs a new local epoch;
// Now extrapolates it with the monotonic clock.
type Synchronizer struct {
	source      DateSource
	recorder    storage.MetadataStorage
	logger      *slog.Logger
	now         func() time.Time
	installedAt time.Time
	lastAttempt time.Time
	interval    time.Duration
	epoch       int64
	lastSync    int64
	synced      bool
	dst         bool
	dstLocal    bool
	mu          sync.RWMutex
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithClock replaces time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) {
		s.now = now
	}
}

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Synchronizer) {
		s.interval = d
	}
}

// WithRecorder persists the instant of every successful sync.
func WithRecorder(m storage.MetadataStorage) Option {
	return func(s *Synchronizer) {
		s.recorder = m
	}
}

// WithDSTFromLocal evaluates daylight saving at local standard time instead
// of the GMT calendar fields of the Date header.
func WithDSTFromLocal(enabled bool) Option {
	return func(s *Synchronizer) {
		s.dstLocal = enabled
	}
}

// NewSynchronizer создает синхронизатор, читающий время из source
func NewSynchronizer(source DateSource, logger *slog.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		source:   source,
		logger:   logger,
		now:      time.Now,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads the last sync instant recorded by a previous run.
// The clock itself stays unsynced.
func (s *Synchronizer) Restore(ctx context.Context) error {
	if s.recorder == nil {
		return nil
	}

	ts, err := s.recorder.GetLastSyncTimestamp(ctx)
	if err != nil {
		return fmt.Errorf("failed to load last sync timestamp: %w", err)
	}

	s.mu.Lock()
	s.lastSync = ts
	s.mu.Unlock()
	return nil
}

// Sync fetches the remote date and installs the local epoch.
// On failure the previous state is left untouched.
func (s *Synchronizer) Sync(ctx context.Context) error {
	s.mu.Lock()
	s.lastAttempt = s.now()
	s.mu.Unlock()

	header, err := s.source.FetchDate(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch date: %w", err)
	}

	gmt, err := ParseDate(header)
	if err != nil {
		return err
	}

	gmtEpoch := caltime.ToEpoch(gmt)
	dst := s.isDST(gmt, gmtEpoch)
	local := gmtEpoch + caltime.LocalOffset(dst)

	s.mu.Lock()
	s.epoch = local
	s.installedAt = s.now()
	s.synced = true
	s.dst = dst
	s.lastSync = local
	s.mu.Unlock()

	s.logger.Info("Clock synchronized",
		"gmt", gmt.String(),
		"local", caltime.FromEpoch(local).String(),
		"dst", dst,
	)

	if s.recorder != nil {
		if err := s.recorder.SaveLastSyncTimestamp(ctx, local); err != nil {
			s.logger.Warn("Failed to record sync timestamp", "error", err)
		}
	}

	return nil
}

func (s *Synchronizer) isDST(gmt caltime.DateTime, gmtEpoch int64) bool {
	if !s.dstLocal {
		return caltime.IsDST(gmt.Year, gmt.Month, gmt.Day, gmt.Hour)
	}
	standard := caltime.FromEpoch(gmtEpoch + caltime.LocalOffset(false))
	return caltime.IsDST(standard.Year, standard.Month, standard.Day, standard.Hour)
}

// Due reports whether a sync attempt should run at now: only while unsynced
// and at most once per interval.
func (s *Synchronizer) Due(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.synced {
		return false
	}
	return s.lastAttempt.IsZero() || now.Sub(s.lastAttempt) >= s.interval
}

// MaybeSync runs Sync when it is due. Failures are logged.
func (s *Synchronizer) MaybeSync(ctx context.Context) bool {
	if !s.Due(s.now()) {
		return false
	}

	if err := s.Sync(ctx); err != nil {
		s.logger.Warn("Time sync failed", "error", err, "retry_in", s.interval)
		return false
	}
	return true
}

// Now returns the current local epoch and whether the clock was ever synced.
// An unsynced clock reports 0.
func (s *Synchronizer) Now() (int64, bool) {
	st := s.Status()
	return st.Epoch, st.Synced
}

// Status returns a snapshot of the time state.
func (s *Synchronizer) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		LastSync: s.lastSync,
		Synced:   s.synced,
		DST:      s.dst,
	}
	if s.synced {
		st.Epoch = s.epoch + int64(s.now().Sub(s.installedAt)/time.Second)
	}
	return st
}
