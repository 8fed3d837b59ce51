package beamplan

import (
	"fmt"
	"sync"
)

// CarrierKey is the unit of carrier ownership: one channel, in one beam,
// bound to one identity. Keys are value-comparable and hashable, replacing
// the stringly "row:col:channel:id" encoding of earlier schemes.
type CarrierKey struct {
	Beam    BeamCoord `json:"beam"`
	Channel int       `json:"channel"`
	ID      CarrierID `json:"identity"`
}

func (k CarrierKey) String() string {
	return fmt.Sprintf("(%d,%d)/ch%d/%s", k.Beam.Row, k.Beam.Col, k.Channel, k.ID)
}

// CarrierRegistry maps each active carrier to the final escalated priority
// that won it its slot.
type CarrierRegistry map[CarrierKey]int

// Plan is the shared allocation state: occupancy grid plus carrier
// registry under one geometry. Grid and registry are always updated
// together; observers never see one without the other.
//
// All mutation and scanning goes through Plan methods, which serialise the
// scan-through-commit sequence under an internal mutex. Commit re-checks
// slot emptiness regardless, so a caller that somehow races still fails
// with ErrSlotOccupied instead of corrupting the grid.
type Plan struct {
	mu sync.Mutex

	Config   PlanConfig
	Grid     *ChannelGrid
	Carriers CarrierRegistry
}

// NewPlan returns an empty plan with the given geometry.
func NewPlan(cfg PlanConfig) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("plan geometry: %w", err)
	}
	return &Plan{
		Config:   cfg,
		Grid:     NewChannelGrid(cfg),
		Carriers: make(CarrierRegistry),
	}, nil
}

// CarrierCount returns the number of active carriers.
func (p *Plan) CarrierCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Carriers)
}

// Priority returns the registered final priority for key.
func (p *Plan) Priority(key CarrierKey) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prio, ok := p.Carriers[key]
	return prio, ok
}

// hasIdentity reports whether id is already bound to an active carrier.
// Caller holds p.mu.
func (p *Plan) hasIdentity(id CarrierID) bool {
	for key := range p.Carriers {
		if key.ID == id {
			return true
		}
	}
	return false
}

// validateBeam checks that b can be a scan centre. Caller need not hold
// the lock; geometry is immutable after NewPlan.
func (p *Plan) validateBeam(b BeamCoord) error {
	if !p.Config.InRange(b) {
		return fmt.Errorf("%w: beam (%d,%d) outside logical extent", ErrInvalidInput, b.Row, b.Col)
	}
	return nil
}
