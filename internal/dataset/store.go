package dataset

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
)

// Snapshot is an immutable view of the loaded bars.
// Generation changes on every Replace and is used to key derived results.
type Snapshot struct {
	Bars       []types.Bar
	Generation string
	LoadedAt   time.Time
	Source     string
}

// Empty reports whether the snapshot holds no bars.
func (s Snapshot) Empty() bool {
	return len(s.Bars) == 0
}

// Store holds the current bar set. Readers take snapshots; a refresh swaps the
// whole set at once so readers never see a partially replaced series.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		mu:       sync.RWMutex{},
		snapshot: Snapshot{},
		now:      time.Now,
	}
}

// Replace installs bars as the current dataset and returns the new snapshot.
// The bars are copied, so later changes by the caller are not observed.
func (s *Store) Replace(bars []types.Bar, source string) Snapshot {
	owned := make([]types.Bar, len(bars))
	copy(owned, bars)

	next := Snapshot{
		Bars:       owned,
		Generation: uuid.New().String(),
		LoadedAt:   s.now(),
		Source:     source,
	}

	s.mu.Lock()
	s.snapshot = next
	s.mu.Unlock()

	return next
}

// Snapshot returns the current dataset.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot
}

// Loaded reports whether Replace has been called at least once.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot.Generation != ""
}
