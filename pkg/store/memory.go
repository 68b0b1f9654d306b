package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/verdant/pkg/errors"
)

// MemoryStore keeps runs in memory. Used by tests and single-run invocations
// that have no result backend configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save persists a run, assigning its ID and timestamp when unset.
func (s *MemoryStore) Save(_ context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, *run)
	return nil
}

// List returns up to limit runs, newest first.
func (s *MemoryStore) List(_ context.Context, limit int64) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Run, len(s.runs))
	copy(out, s.runs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Best returns the highest-scoring run.
func (s *MemoryStore) Best(_ context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "no runs recorded")
	}
	best := s.runs[0]
	for _, r := range s.runs[1:] {
		if r.Score > best.Score {
			best = r
		}
	}
	return &best, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
