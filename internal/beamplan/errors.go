package beamplan

import "errors"

// Error taxonomy for the allocation core. Handlers and stores match these
// with errors.Is; everything else wraps them with context via fmt.Errorf.
var (
	// ErrInvalidInput marks a malformed record or request: out-of-range
	// beam or channel, or a missing/duplicate identity.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSlotOccupied signals an invariant breach at commit time: the slot
	// a fresh scan reported empty is no longer empty. Under correct
	// sequential use it is unreachable; concurrently it means the caller
	// lost a race and must retry with a fresh scan.
	ErrSlotOccupied = errors.New("slot already occupied")

	// ErrCarrierNotFound is returned by deallocation of an unknown key.
	// The plan is left untouched.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrChannelsExhausted is the defensive bound on the escalation loop.
	// The maximum interference score is 118, so with a full channel budget
	// this should be unreachable; it is reported rather than looping.
	ErrChannelsExhausted = errors.New("no admissible channel within score bound")
)
