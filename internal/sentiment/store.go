package sentiment

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/wonny/happiness/internal/contracts"
)

// window is one published, never-mutated snapshot sequence
type window struct {
	snapshots []contracts.SentimentSnapshot
	version   uint64
	updatedAt time.Time
}

// Store holds the active sentiment window
// ⭐ SSOT: 시계열 윈도우는 이 Store만 소유하며 교체는 포인터 스왑 한 번으로 끝남
type Store struct {
	current atomic.Pointer[window]
	now     func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return NewStoreWithClock(time.Now)
}

// NewStoreWithClock creates an empty store that stamps publishes with now
func NewStoreWithClock(now func() time.Time) *Store {
	s := &Store{now: now}
	s.current.Store(&window{})
	return s
}

// Replace atomically swaps the active window. The input is copied, so later
// mutation by the caller is invisible to readers. If any snapshot is invalid the
// store is left unchanged.
func (s *Store) Replace(snapshots []contracts.SentimentSnapshot) error {
	for i, snap := range snapshots {
		if !snap.IsValid() {
			return fmt.Errorf("snapshot %d: %w", i, contracts.ErrInvalidSnapshot)
		}
	}

	owned := make([]contracts.SentimentSnapshot, len(snapshots))
	copy(owned, snapshots)

	for {
		old := s.current.Load()
		next := &window{
			snapshots: owned,
			version:   old.version + 1,
			updatedAt: s.now(),
		}
		if s.current.CompareAndSwap(old, next) {
			return nil
		}
	}
}

// Current returns a copy of the ordered window, oldest first
func (s *Store) Current() []contracts.SentimentSnapshot {
	w := s.current.Load()
	out := make([]contracts.SentimentSnapshot, len(w.snapshots))
	copy(out, w.snapshots)
	return out
}

// Latest returns the newest snapshot
func (s *Store) Latest() (contracts.SentimentSnapshot, error) {
	w := s.current.Load()
	if len(w.snapshots) == 0 {
		return contracts.SentimentSnapshot{}, fmt.Errorf("latest: %w", contracts.ErrEmptyWindow)
	}
	return w.snapshots[len(w.snapshots)-1], nil
}

// Previous returns the snapshot immediately preceding Latest
func (s *Store) Previous() (contracts.SentimentSnapshot, error) {
	w := s.current.Load()
	if len(w.snapshots) < 2 {
		return contracts.SentimentSnapshot{}, fmt.Errorf("previous: %w", contracts.ErrEmptyWindow)
	}
	return w.snapshots[len(w.snapshots)-2], nil
}

// LatestPair returns (latest, previous) from the same published window, so the
// pair can never straddle two refreshes.
func (s *Store) LatestPair() (latest, previous contracts.SentimentSnapshot, err error) {
	w := s.current.Load()
	if len(w.snapshots) < 2 {
		return latest, previous, fmt.Errorf("latest pair: %w", contracts.ErrEmptyWindow)
	}
	return w.snapshots[len(w.snapshots)-1], w.snapshots[len(w.snapshots)-2], nil
}

// Len returns the number of snapshots in the active window
func (s *Store) Len() int {
	return len(s.current.Load().snapshots)
}

// Version returns the publish counter (0 = never replaced)
func (s *Store) Version() uint64 {
	return s.current.Load().version
}

// UpdatedAt returns when the active window was published
func (s *Store) UpdatedAt() time.Time {
	return s.current.Load().updatedAt
}

// Snapshot returns a copy of the active window with its version and publish
// time, all read from the same published window.
func (s *Store) Snapshot() ([]contracts.SentimentSnapshot, uint64, time.Time) {
	w := s.current.Load()
	out := make([]contracts.SentimentSnapshot, len(w.snapshots))
	copy(out, w.snapshots)
	return out, w.version, w.updatedAt
}
