package beamplan

import (
	"fmt"
	"sort"
)

// CarrierRecord is the flat interchange shape for one active carrier. It
// is what crosses every boundary of the core: file ingest, the HTTP API,
// and the sqlite rows are all this record.
type CarrierRecord struct {
	BeamRow  int    `json:"beam_row"`
	BeamCol  int    `json:"beam_col"`
	Channel  int    `json:"channel"`
	Priority int    `json:"priority"`
	ID       string `json:"identity"`
}

// Key returns the carrier key the record describes.
func (r CarrierRecord) Key() CarrierKey {
	return CarrierKey{
		Beam:    BeamCoord{Row: r.BeamRow, Col: r.BeamCol},
		Channel: r.Channel,
		ID:      CarrierID(r.ID),
	}
}

// Ingest builds a plan from flat records. Each record becomes one grid
// slot and one registry entry. It fails with ErrInvalidInput on an
// out-of-range beam or channel, an empty or duplicate identity, or two
// records claiming the same slot; on failure no plan is returned.
func Ingest(cfg PlanConfig, records []CarrierRecord) (*Plan, error) {
	plan, err := NewPlan(cfg)
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		key := rec.Key()
		if !cfg.InRange(key.Beam) {
			return nil, fmt.Errorf("record %d: %w: beam (%d,%d) outside logical extent",
				i, ErrInvalidInput, rec.BeamRow, rec.BeamCol)
		}
		if !cfg.ValidChannel(key.Channel) {
			return nil, fmt.Errorf("record %d: %w: channel %d outside [0,%d)",
				i, ErrInvalidInput, rec.Channel, cfg.Channels)
		}
		if key.ID == emptySlot {
			return nil, fmt.Errorf("record %d: %w: empty carrier identity", i, ErrInvalidInput)
		}
		if plan.hasIdentity(key.ID) {
			return nil, fmt.Errorf("record %d: %w: duplicate identity %q", i, ErrInvalidInput, key.ID)
		}
		if plan.Grid.Occupied(key.Beam, key.Channel) {
			return nil, fmt.Errorf("record %d: %w: slot (%d,%d)/ch%d already claimed",
				i, ErrInvalidInput, rec.BeamRow, rec.BeamCol, rec.Channel)
		}
		plan.Grid.set(key.Beam, key.Channel, key.ID)
		plan.Carriers[key] = rec.Priority
	}
	return plan, nil
}

// Reset replaces the plan's carriers with the given records, keeping the
// geometry. Validation runs against a fresh plan first, so a bad record
// set leaves the current state untouched.
func (p *Plan) Reset(records []CarrierRecord) error {
	fresh, err := Ingest(p.Config, records)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.Grid = fresh.Grid
	p.Carriers = fresh.Carriers
	p.mu.Unlock()
	return nil
}

// Export enumerates the registry as flat records, sorted by beam then
// channel for stable output. Ingest(Export(p)) reproduces the same set of
// (beam, channel, identity, priority) tuples regardless of map iteration
// order.
func (p *Plan) Export() []CarrierRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	records := make([]CarrierRecord, 0, len(p.Carriers))
	for key, prio := range p.Carriers {
		records = append(records, CarrierRecord{
			BeamRow:  key.Beam.Row,
			BeamCol:  key.Beam.Col,
			Channel:  key.Channel,
			Priority: prio,
			ID:       string(key.ID),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.BeamRow != b.BeamRow {
			return a.BeamRow < b.BeamRow
		}
		if a.BeamCol != b.BeamCol {
			return a.BeamCol < b.BeamCol
		}
		return a.Channel < b.Channel
	})
	return records
}
