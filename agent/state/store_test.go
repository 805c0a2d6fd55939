package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanpawarit/trip-dining/agent/geo"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Load(ctx, "run-1")
	require.ErrorIs(t, err, ErrStateNotFound)

	snap := &Snapshot{RunID: "run-1", Entries: []Recommendation{rec("A", "A", 40, -74)}}
	require.NoError(t, store.Save(ctx, snap))

	// Mutating the caller's snapshot must not leak into the store.
	snap.Entries[0].Name = "mutated"

	loaded, err := store.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "A", loaded.Entries[0].Name)
	assert.False(t, loaded.UpdatedAt.IsZero())

	require.NoError(t, store.Delete(ctx, "run-1"))
	_, err = store.Load(ctx, "run-1")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestMemoryStoreRejectsEmptyRun(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	_, err := store.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRun)
	assert.ErrorIs(t, store.Save(context.Background(), &Snapshot{}), ErrInvalidRun)
}

func TestPostgresRowsRoundTrip(t *testing.T) {
	t.Parallel()

	first := time.Date(2025, 8, 2, 12, 0, 0, 0, time.UTC)
	second := first.Add(6 * time.Hour)
	snap := &Snapshot{
		RunID: "run-pg",
		Entries: []Recommendation{
			{PlaceID: "p1", Name: "A", Address: "A st", Location: geo.Coordinate{Lat: 34.1, Lng: -118.3}, SelectedAt: first},
			{PlaceID: "p2", Name: "B", Address: "B st", Location: geo.Coordinate{Lat: 34.0, Lng: -118.5}, SelectedAt: second},
		},
	}

	rows := rowsFromSnapshot(snap)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Seq)
	assert.Equal(t, 1, rows[1].Seq)
	assert.Equal(t, "run-pg", rows[1].RunID)

	back := snapshotFromRows("run-pg", rows)
	assert.Equal(t, snap.Entries, back.Entries)
	assert.Equal(t, second, back.UpdatedAt)
	assert.Equal(t, snapshotVersion, back.Version)
}

func TestRegistryOpenCommitForget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	reg := NewRegistry(store)

	m, err := reg.Open(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, RejectNone, m.Claim(rec("A", "A", 40, -74), 300))
	require.NoError(t, reg.Commit(ctx, m))

	again, err := reg.Open(ctx, "run-1")
	require.NoError(t, err)
	assert.Same(t, m, again)

	// A second process sees the committed run through the shared store.
	other := NewRegistry(store)
	restored, err := other.Open(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 1, restored.Len())

	require.NoError(t, reg.Forget(ctx, "run-1"))
	fresh, err := reg.Open(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh.Len())
}

func TestRegistryOpenRejectsEmptyRun(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(nil).Open(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidRun)
}

func TestNewRunIDIsUnique(t *testing.T) {
	t.Parallel()

	assert.NotEqual(t, NewRunID(), NewRunID())
}

// gatedStore blocks Load of one run until the gate is closed.
type gatedStore struct {
	*MemoryStore
	blockRun string
	gate     chan struct{}
	entered  chan struct{}
	once     sync.Once
}

func newGatedStore(blockRun string) *gatedStore {
	return &gatedStore{
		MemoryStore: NewMemoryStore(),
		blockRun:    blockRun,
		gate:        make(chan struct{}),
		entered:     make(chan struct{}),
	}
}

func (g *gatedStore) Load(ctx context.Context, runID string) (*Snapshot, error) {
	if runID == g.blockRun {
		g.once.Do(func() { close(g.entered) })
		<-g.gate
	}
	return g.MemoryStore.Load(ctx, runID)
}

func TestRegistryOpenDoesNotBlockOtherRunsDuringLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newGatedStore("slow")
	reg := NewRegistry(store)

	slowDone := make(chan error, 1)
	go func() {
		_, err := reg.Open(ctx, "slow")
		slowDone <- err
	}()
	<-store.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := reg.Open(ctx, "fast")
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Open of another run waited for a slow store load")
	}

	close(store.gate)
	require.NoError(t, <-slowDone)
}

func TestRegistryConcurrentOpenSharesOneMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newGatedStore("run-1")
	reg := NewRegistry(store)

	const callers = 4
	got := make([]*Memory, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := reg.Open(ctx, "run-1")
			assert.NoError(t, err)
			got[i] = m
		}(i)
	}
	<-store.entered
	close(store.gate)
	wg.Wait()

	for i := 1; i < callers; i++ {
		assert.Same(t, got[0], got[i])
	}
}

func TestRegistryCommitAfterForgetDoesNotRestoreRun(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	reg := NewRegistry(store)

	m, err := reg.Open(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, RejectNone, m.Claim(rec("A", "A", 40, -74), 300))

	require.NoError(t, reg.Forget(ctx, "run-1"))
	assert.ErrorIs(t, reg.Commit(ctx, m), ErrRunForgotten)

	_, err = store.Load(ctx, "run-1")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRegistryCommitOfReplacedMemoryIsRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reg := NewRegistry(nil)

	stale, err := reg.Open(ctx, "run-1")
	require.NoError(t, err)
	require.NoError(t, reg.Forget(ctx, "run-1"))

	fresh, err := reg.Open(ctx, "run-1")
	require.NoError(t, err)
	require.NotSame(t, stale, fresh)

	assert.ErrorIs(t, reg.Commit(ctx, stale), ErrRunForgotten)
	assert.NoError(t, reg.Commit(ctx, fresh))
}
