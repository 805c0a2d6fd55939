package state

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store persists run memories between tool-server processes.
type Store interface {
	Load(ctx context.Context, runID string) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, runID string) error
}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps snapshots in the current process only.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]*Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*Snapshot)}
}

func (s *MemoryStore) Load(_ context.Context, runID string) (*Snapshot, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, ErrInvalidRun
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.runs[runID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return cloneSnapshot(snap), nil
}

func (s *MemoryStore) Save(_ context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	stored := cloneSnapshot(snap)
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[stored.RunID] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, runID string) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ErrInvalidRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

func cloneSnapshot(in *Snapshot) *Snapshot {
	out := *in
	out.Entries = append([]Recommendation(nil), in.Entries...)
	return &out
}
