package beamplan

// BeamCoord addresses one spot beam in padded grid space.
type BeamCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CarrierID is the caller-supplied identity of an active carrier. The zero
// value is reserved as the empty-slot marker and is never a valid identity.
type CarrierID string

// emptySlot marks an unoccupied grid slot. Ingest and request validation
// reject empty identities, so the sentinel cannot collide with a carrier.
const emptySlot CarrierID = ""

// ChannelGrid is the dense occupancy state: one carrier-or-empty slot per
// (beam, channel). Extents are padded, never logical.
type ChannelGrid struct {
	Rows     int // padded row extent, e.g. 18
	Cols     int // padded column extent, e.g. 22
	Channels int // e.g. 40

	Slots []CarrierID // len = Rows * Cols * Channels
}

// NewChannelGrid allocates an empty grid with the padded extents of cfg.
func NewChannelGrid(cfg PlanConfig) *ChannelGrid {
	g := &ChannelGrid{
		Rows:     cfg.GridRows(),
		Cols:     cfg.GridCols(),
		Channels: cfg.Channels,
	}
	g.Slots = make([]CarrierID, g.Rows*g.Cols*g.Channels)
	return g
}

// Idx maps (row, col, channel) to the flat slot index.
func (g *ChannelGrid) Idx(row, col, ch int) int {
	return (row*g.Cols+col)*g.Channels + ch
}

// At returns the occupant of the slot, or the empty marker.
func (g *ChannelGrid) At(b BeamCoord, ch int) CarrierID {
	return g.Slots[g.Idx(b.Row, b.Col, ch)]
}

// Occupied reports whether the slot holds a carrier.
func (g *ChannelGrid) Occupied(b BeamCoord, ch int) bool {
	return g.Slots[g.Idx(b.Row, b.Col, ch)] != emptySlot
}

// set writes the slot. Mutation goes through Plan methods only; the grid
// itself does no invariant checking.
func (g *ChannelGrid) set(b BeamCoord, ch int, id CarrierID) {
	g.Slots[g.Idx(b.Row, b.Col, ch)] = id
}

// clear empties the slot.
func (g *ChannelGrid) clear(b BeamCoord, ch int) {
	g.Slots[g.Idx(b.Row, b.Col, ch)] = emptySlot
}

// OccupiedCount returns the number of active slots, for telemetry.
func (g *ChannelGrid) OccupiedCount() int {
	n := 0
	for _, s := range g.Slots {
		if s != emptySlot {
			n++
		}
	}
	return n
}
