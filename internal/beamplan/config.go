package beamplan

import "fmt"

// Default plan geometry. The 14x14 logical extent and 40-channel budget
// match the payload the reuse template was designed for.
const (
	DefaultBeamRows = 14
	DefaultBeamCols = 14
	DefaultPadRows  = 4 // split evenly: 2 guard rows above and below
	DefaultPadCols  = 8 // split evenly: 4 guard columns either side
	DefaultChannels = 40
)

// PlanConfig describes the geometry of a channel plan: the logical beam
// extent, the guard padding around it, and the channel budget per beam.
//
// The grid is over-allocated by the padding so that every neighbour lookup
// for an in-range beam stays inside the array without bounds checks. Beam
// coordinates are expressed in padded grid space: the logical extent
// occupies rows [PadRows/2, BeamRows+PadRows/2) and the analogous column
// band.
type PlanConfig struct {
	BeamRows int // logical beam rows, e.g. 14
	BeamCols int // logical beam columns, e.g. 14
	PadRows  int // guard rows added to the grid, e.g. 4
	PadCols  int // guard columns added to the grid, e.g. 8
	Channels int // channels per beam, e.g. 40
}

// DefaultPlanConfig returns the default 14x14x40 geometry.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		BeamRows: DefaultBeamRows,
		BeamCols: DefaultBeamCols,
		PadRows:  DefaultPadRows,
		PadCols:  DefaultPadCols,
		Channels: DefaultChannels,
	}
}

// GridRows returns the padded row extent of the grid.
func (c PlanConfig) GridRows() int { return c.BeamRows + c.PadRows }

// GridCols returns the padded column extent of the grid.
func (c PlanConfig) GridCols() int { return c.BeamCols + c.PadCols }

// RowMargin returns the guard rows on each side of the logical extent.
func (c PlanConfig) RowMargin() int { return c.PadRows / 2 }

// ColMargin returns the guard columns on each side of the logical extent.
func (c PlanConfig) ColMargin() int { return c.PadCols / 2 }

// InRange reports whether b lies inside the logical beam extent.
func (c PlanConfig) InRange(b BeamCoord) bool {
	return b.Row >= c.RowMargin() && b.Row < c.BeamRows+c.RowMargin() &&
		b.Col >= c.ColMargin() && b.Col < c.BeamCols+c.ColMargin()
}

// ValidChannel reports whether ch is inside the channel budget.
func (c PlanConfig) ValidChannel(ch int) bool {
	return ch >= 0 && ch < c.Channels
}

// Validate checks that the geometry is non-degenerate and that the padding
// can absorb the reuse template. The template reaches 2 rows and 4 columns
// from the centre, so the margins must be at least that wide for the
// in-bounds guarantee to hold.
func (c PlanConfig) Validate() error {
	if c.BeamRows <= 0 || c.BeamCols <= 0 {
		return fmt.Errorf("beam extent must be positive, got %dx%d", c.BeamRows, c.BeamCols)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", c.Channels)
	}
	if c.RowMargin() < maxRowReach {
		return fmt.Errorf("row margin %d too small for reuse template (need %d)", c.RowMargin(), maxRowReach)
	}
	if c.ColMargin() < maxColReach {
		return fmt.Errorf("column margin %d too small for reuse template (need %d)", c.ColMargin(), maxColReach)
	}
	return nil
}
