package beamplan

import (
	"fmt"

	"github.com/skyfield-data/spectrum.report/internal/monitoring"
)

// Request asks for one channel in one beam. It is consumed by Allocate and
// not retained.
type Request struct {
	Beam     BeamCoord `json:"beam"`
	Priority int       `json:"priority"` // baseline interference tolerance
	ID       CarrierID `json:"identity"`
}

// Placement is the outcome of a successful allocation.
type Placement struct {
	Channel       int   `json:"channel"`
	FinalPriority int   `json:"final_priority"` // threshold that admitted the channel
	Scores        []int `json:"scores"`         // full score vector at decision time
}

// Key returns the carrier key created by the placement.
func (pl Placement) Key(req Request) CarrierKey {
	return CarrierKey{Beam: req.Beam, Channel: pl.Channel, ID: req.ID}
}

// Allocate finds and commits a channel for req by priority escalation:
// scan at the baseline threshold, and while nothing is admissible raise
// the threshold by one and scan again. The score bound guarantees
// termination within MaxInterferenceScore+1-baseline iterations.
//
// On success the lowest admissible channel is committed to grid and
// registry in one step and the placement is returned. The whole
// scan-escalate-commit sequence runs under the plan lock, so the commit
// always acts on the state the final scan observed.
func (p *Plan) Allocate(req Request) (Placement, error) {
	if err := p.validateRequest(req); err != nil {
		return Placement{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.hasIdentity(req.ID) {
		return Placement{}, fmt.Errorf("%w: identity %q already active", ErrInvalidInput, req.ID)
	}

	for threshold := req.Priority; threshold <= MaxInterferenceScore; threshold++ {
		admissible, scores := p.scanLocked(req.Beam, threshold)
		// Past threshold 100 the admissible set can contain channels the
		// beam itself already uses. Those can never satisfy the empty-slot
		// commit precondition, so they are skipped rather than committed.
		admissible = p.freeOnly(req.Beam, admissible)
		if len(admissible) == 0 {
			continue
		}
		ch := admissible[0]
		if err := p.assignLocked(req.Beam, ch, req.ID, threshold); err != nil {
			return Placement{}, err
		}
		if threshold > req.Priority {
			monitoring.Logf("beam (%d,%d): escalated %d -> %d for carrier %s",
				req.Beam.Row, req.Beam.Col, req.Priority, threshold, req.ID)
		}
		return Placement{Channel: ch, FinalPriority: threshold, Scores: scores}, nil
	}

	return Placement{}, fmt.Errorf("beam (%d,%d): %w", req.Beam.Row, req.Beam.Col, ErrChannelsExhausted)
}

// Assign commits a carrier to an explicit slot. The slot must be empty;
// a non-empty slot is an invariant failure (ErrSlotOccupied), never a
// recoverable condition when the scan-then-assign protocol is honoured.
func (p *Plan) Assign(beam BeamCoord, channel int, id CarrierID, priority int) error {
	if err := p.validateBeam(beam); err != nil {
		return err
	}
	if !p.Config.ValidChannel(channel) {
		return fmt.Errorf("%w: channel %d outside [0,%d)", ErrInvalidInput, channel, p.Config.Channels)
	}
	if id == emptySlot {
		return fmt.Errorf("%w: empty carrier identity", ErrInvalidInput)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.assignLocked(beam, channel, id, priority)
}

// assignLocked writes grid slot and registry entry together. Caller holds
// p.mu and has validated beam, channel and identity.
func (p *Plan) assignLocked(beam BeamCoord, channel int, id CarrierID, priority int) error {
	if occupant := p.Grid.At(beam, channel); occupant != emptySlot {
		return fmt.Errorf("beam (%d,%d) channel %d held by %q: %w",
			beam.Row, beam.Col, channel, occupant, ErrSlotOccupied)
	}
	p.Grid.set(beam, channel, id)
	p.Carriers[CarrierKey{Beam: beam, Channel: channel, ID: id}] = priority
	return nil
}

// Deallocate releases the carrier identified by key. An unknown key fails
// with ErrCarrierNotFound and mutates nothing. On success the registry
// entry and the grid slot are removed together.
func (p *Plan) Deallocate(key CarrierKey) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deallocateLocked(key)
}

func (p *Plan) deallocateLocked(key CarrierKey) error {
	if _, ok := p.Carriers[key]; !ok {
		return fmt.Errorf("%s: %w", key, ErrCarrierNotFound)
	}
	delete(p.Carriers, key)
	p.Grid.clear(key.Beam, key.Channel)
	return nil
}

// Reallocate moves a carrier: deallocate key, then allocate req. If the
// deallocation fails the whole operation fails and no allocation is
// attempted. The carrier's channel is never mutated in place; the move
// produces a new key.
func (p *Plan) Reallocate(key CarrierKey, req Request) (Placement, error) {
	if err := p.Deallocate(key); err != nil {
		return Placement{}, fmt.Errorf("reallocate: %w", err)
	}
	return p.Allocate(req)
}

// freeOnly filters admissible down to channels whose slot at beam is
// empty. Below the self-collision score this is a no-op. Caller holds p.mu.
func (p *Plan) freeOnly(beam BeamCoord, admissible []int) []int {
	out := admissible[:0]
	for _, ch := range admissible {
		if !p.Grid.Occupied(beam, ch) {
			out = append(out, ch)
		}
	}
	return out
}

// validateRequest rejects malformed requests before any state is touched.
func (p *Plan) validateRequest(req Request) error {
	if err := p.validateBeam(req.Beam); err != nil {
		return err
	}
	if req.ID == emptySlot {
		return fmt.Errorf("%w: empty carrier identity", ErrInvalidInput)
	}
	if req.Priority < 0 {
		return fmt.Errorf("%w: negative baseline priority %d", ErrInvalidInput, req.Priority)
	}
	return nil
}
