package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Registry hands out the Memory of each planning run. A run is opened on
// first use, committed after every accepted selection and forgotten when
// the run ends.
type Registry struct {
	store Store

	mu   sync.Mutex
	runs map[string]*Memory
}

func NewRegistry(store Store) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Registry{
		store: store,
		runs:  make(map[string]*Memory),
	}
}

// NewRunID returns a fresh identifier for a planning run.
func NewRunID() string {
	return uuid.NewString()
}

// Open returns the memory of runID, loading it from the store the first
// time the run is seen by this process. The store is read without holding
// the registry lock; when two callers race, the first one registered wins.
func (r *Registry) Open(ctx context.Context, runID string) (*Memory, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, ErrInvalidRun
	}

	if m, ok := r.lookup(runID); ok {
		return m, nil
	}

	loaded, err := r.loadOrCreate(ctx, runID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.runs[runID]; ok {
		return m, nil
	}
	r.runs[runID] = loaded
	return loaded, nil
}

// Commit persists the current memory of the run. A memory whose run was
// forgotten, or replaced by a newer Open, is not saved and ErrRunForgotten
// is returned.
func (r *Registry) Commit(ctx context.Context, m *Memory) error {
	if m == nil {
		return ErrNilSnapshot
	}

	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if cur, ok := r.lookup(m.RunID()); !ok || cur != m {
		return fmt.Errorf("%w: %s", ErrRunForgotten, m.RunID())
	}

	snap := m.Snapshot()
	if err := r.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save run %s: %w", snap.RunID, err)
	}
	log.Debug().Str("run_id", snap.RunID).Int("entries", len(snap.Entries)).Msg("run memory committed")
	return nil
}

// Forget discards the run both locally and in the store. A commit of the
// same run that is already saving finishes before the delete.
func (r *Registry) Forget(ctx context.Context, runID string) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ErrInvalidRun
	}

	r.mu.Lock()
	m := r.runs[runID]
	delete(r.runs, runID)
	r.mu.Unlock()

	if m != nil {
		m.persistMu.Lock()
		defer m.persistMu.Unlock()
	}

	if err := r.store.Delete(ctx, runID); err != nil {
		return fmt.Errorf("delete run %s: %w", runID, err)
	}
	log.Info().Str("run_id", runID).Msg("run memory discarded")
	return nil
}

func (r *Registry) lookup(runID string) (*Memory, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.runs[runID]
	return m, ok
}

func (r *Registry) loadOrCreate(ctx context.Context, runID string) (*Memory, error) {
	snap, err := r.store.Load(ctx, runID)
	if err == nil {
		return MemoryFromSnapshot(snap), nil
	}
	if !errors.Is(err, ErrStateNotFound) {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return NewMemory(runID), nil
}
