package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/tanpawarit/trip-dining/agent/geo"
)

var _ Store = (*PostgresStore)(nil)

type recommendationRow struct {
	bun.BaseModel `bun:"table:restaurant_recommendations,alias:rr"`

	RunID      string    `bun:"run_id,pk"`
	Seq        int       `bun:"seq,pk"`
	PlaceID    string    `bun:"place_id"`
	Name       string    `bun:"name,notnull"`
	Address    string    `bun:"address"`
	Lat        float64   `bun:"lat,notnull"`
	Lng        float64   `bun:"lng,notnull"`
	SelectedAt time.Time `bun:"selected_at,notnull"`
}

// PostgresStore keeps one row per recommendation, keyed by (run_id, seq).
// Memory only grows, so saving inserts the rows not yet written.
type PostgresStore struct {
	db bun.IDB
}

func NewPostgresStore(db bun.IDB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the recommendations table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*recommendationRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create recommendations table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, runID string) (*Snapshot, error) {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, ErrInvalidRun
	}

	var rows []recommendationRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("rr.run_id = ?", runID).
		OrderExpr("rr.seq ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select recommendations: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrStateNotFound
	}

	snap := snapshotFromRows(runID, rows)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run snapshot loaded from store: %w", err)
	}
	return snap, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	rows := rowsFromSnapshot(snap)
	if len(rows) == 0 {
		return nil
	}

	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (run_id, seq) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert recommendations: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, runID string) error {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return ErrInvalidRun
	}

	_, err := s.db.NewDelete().
		Model((*recommendationRow)(nil)).
		Where("run_id = ?", runID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete recommendations: %w", err)
	}
	return nil
}

func rowsFromSnapshot(snap *Snapshot) []recommendationRow {
	rows := make([]recommendationRow, 0, len(snap.Entries))
	for i, rec := range snap.Entries {
		selectedAt := rec.SelectedAt
		if selectedAt.IsZero() {
			selectedAt = snap.UpdatedAt
		}
		rows = append(rows, recommendationRow{
			RunID:      snap.RunID,
			Seq:        i,
			PlaceID:    rec.PlaceID,
			Name:       rec.Name,
			Address:    rec.Address,
			Lat:        rec.Location.Lat,
			Lng:        rec.Location.Lng,
			SelectedAt: selectedAt.UTC(),
		})
	}
	return rows
}

func snapshotFromRows(runID string, rows []recommendationRow) *Snapshot {
	snap := &Snapshot{
		RunID:   runID,
		Version: snapshotVersion,
		Entries: make([]Recommendation, 0, len(rows)),
	}
	for _, row := range rows {
		snap.Entries = append(snap.Entries, Recommendation{
			PlaceID:    row.PlaceID,
			Name:       row.Name,
			Address:    row.Address,
			Location:   geo.Coordinate{Lat: row.Lat, Lng: row.Lng},
			SelectedAt: row.SelectedAt,
		})
		if row.SelectedAt.After(snap.UpdatedAt) {
			snap.UpdatedAt = row.SelectedAt
		}
	}
	return snap
}
