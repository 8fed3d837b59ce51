package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
)

// PlanStore provides persistence for channel plans.
type PlanStore struct {
	db *sql.DB
}

// NewPlanStore creates a PlanStore backed by the given database. The
// schema is owned by internal/db.
func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

// SavePlan replaces the stored carrier set with the plan's current
// carriers, atomically.
func (s *PlanStore) SavePlan(plan *beamplan.Plan) error {
	records := plan.Export()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save plan: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM carriers`); err != nil {
		return fmt.Errorf("save plan: clear carriers: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO carriers (beam_row, beam_col, channel, priority, identity)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save plan: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.BeamRow, rec.BeamCol, rec.Channel, rec.Priority, rec.ID); err != nil {
			return fmt.Errorf("save plan: insert carrier %q: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save plan: commit: %w", err)
	}
	return nil
}

// LoadRecords retrieves the stored carrier records in beam/channel order.
func (s *PlanStore) LoadRecords() ([]beamplan.CarrierRecord, error) {
	rows, err := s.db.Query(`
		SELECT beam_row, beam_col, channel, priority, identity
		FROM carriers
		ORDER BY beam_row, beam_col, channel
	`)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []beamplan.CarrierRecord
	for rows.Next() {
		var rec beamplan.CarrierRecord
		if err := rows.Scan(&rec.BeamRow, &rec.BeamCol, &rec.Channel, &rec.Priority, &rec.ID); err != nil {
			return nil, fmt.Errorf("load records: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	return records, nil
}

// LoadPlan rebuilds a plan from the stored records under the given
// geometry. Records that no longer fit the geometry fail ingest, so a
// geometry change surfaces loudly instead of silently truncating.
func (s *PlanStore) LoadPlan(cfg beamplan.PlanConfig) (*beamplan.Plan, error) {
	records, err := s.LoadRecords()
	if err != nil {
		return nil, err
	}
	plan, err := beamplan.Ingest(cfg, records)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	return plan, nil
}

// LogEvent appends one allocation or release to the audit log.
func (s *PlanStore) LogEvent(event string, rec beamplan.CarrierRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO allocation_log (event, beam_row, beam_col, channel, priority, identity)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event, rec.BeamRow, rec.BeamCol, rec.Channel, rec.Priority, rec.ID)
	if err != nil {
		return fmt.Errorf("log %s event: %w", event, err)
	}
	return nil
}

// EventCount returns the number of audit log entries, for diagnostics.
func (s *PlanStore) EventCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM allocation_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
