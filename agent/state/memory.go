package state

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tanpawarit/trip-dining/agent/geo"
)

// RejectReason explains why a venue was treated as already recommended.
type RejectReason string

const (
	RejectNone      RejectReason = ""
	RejectProximity RejectReason = "proximity"
	RejectAddress   RejectReason = "address"
)

// Recommendation is one venue that was actually returned to a caller.
type Recommendation struct {
	PlaceID    string         `json:"place_id,omitempty"`
	Name       string         `json:"name"`
	Address    string         `json:"address"`
	Location   geo.Coordinate `json:"location"`
	SelectedAt time.Time      `json:"selected_at"`
}

// Memory is the duplicate-suppression state of one planning run.
// It only grows: entries are never pruned while the run is alive.
type Memory struct {
	mu        sync.Mutex
	persistMu sync.Mutex // orders Registry saves and deletes of this run
	runID     string
	addresses map[string]struct{}
	entries   []Recommendation
	updatedAt time.Time
}

func NewMemory(runID string) *Memory {
	return &Memory{
		runID:     runID,
		addresses: make(map[string]struct{}, 8),
	}
}

func (m *Memory) RunID() string {
	return m.runID
}

// Claim records rec unless it duplicates an earlier recommendation.
// The test and the write happen under one lock, so two concurrent
// selections can never both claim near-identical venues.
func (m *Memory) Claim(rec Recommendation, thresholdMeters float64) RejectReason {
	m.mu.Lock()
	defer m.mu.Unlock()

	if reason := m.check(rec.Location, rec.Address, thresholdMeters); reason != RejectNone {
		return reason
	}
	if rec.SelectedAt.IsZero() {
		rec.SelectedAt = time.Now().UTC()
	}
	m.record(rec)
	return RejectNone
}

// Entries returns a copy of the recorded recommendations in selection order.
func (m *Memory) Entries() []Recommendation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Recommendation, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Snapshot copies the memory into its persistable form.
func (m *Memory) Snapshot() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Recommendation, len(m.entries))
	copy(entries, m.entries)
	return &Snapshot{
		RunID:     m.runID,
		Version:   snapshotVersion,
		Entries:   entries,
		UpdatedAt: m.updatedAt,
	}
}

// MemoryFromSnapshot rebuilds a memory from a stored snapshot.
func MemoryFromSnapshot(s *Snapshot) *Memory {
	m := NewMemory(s.RunID)
	for _, rec := range s.Entries {
		m.record(rec)
	}
	m.updatedAt = s.UpdatedAt
	return m
}

func (m *Memory) check(loc geo.Coordinate, address string, thresholdMeters float64) RejectReason {
	for _, prev := range m.entries {
		if geo.Within(loc, prev.Location, thresholdMeters) {
			return RejectProximity
		}
	}
	if key := addressKey(address); key != "" {
		if _, seen := m.addresses[key]; seen {
			return RejectAddress
		}
	}
	return RejectNone
}

func (m *Memory) record(rec Recommendation) {
	m.entries = append(m.entries, rec)
	if key := addressKey(rec.Address); key != "" {
		m.addresses[key] = struct{}{}
	}
	if rec.SelectedAt.After(m.updatedAt) {
		m.updatedAt = rec.SelectedAt
	}
}

// addressKey is the exact formatted address; an empty address identifies nothing.
func addressKey(address string) string {
	if strings.TrimSpace(address) == "" {
		return ""
	}
	return address
}

/* ------------------------------- Snapshot ------------------------------- */

const snapshotVersion = 1

var (
	ErrStateNotFound   = errors.New("run state not found")
	ErrNilSnapshot     = errors.New("run snapshot is nil")
	ErrInvalidRun      = errors.New("run id is empty")
	ErrInvalidSnapshot = errors.New("invalid run snapshot")
	ErrRunForgotten    = errors.New("run was forgotten")
)

// Snapshot is the stored form of a run's Memory.
type Snapshot struct {
	RunID     string           `json:"run_id"`
	Version   int              `json:"version"`
	Entries   []Recommendation `json:"entries,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrNilSnapshot
	}
	if strings.TrimSpace(s.RunID) == "" {
		return ErrInvalidRun
	}
	for i, rec := range s.Entries {
		if !rec.Location.Valid() {
			return fmt.Errorf("%w: entry %d has coordinate %s", ErrInvalidSnapshot, i, rec.Location)
		}
	}
	return nil
}
