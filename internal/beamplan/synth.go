package beamplan

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
)

// Workload synthesis for load testing and demos: random carriers are
// drawn uniformly over the logical beam extent and pushed through the
// real allocator one at a time, so a synthesised plan always satisfies
// the no-collision invariant.

// maxSynthPriority bounds the random baseline priority (exclusive).
const maxSynthPriority = 10

// RandomRequest draws one carrier request: uniform beam inside the
// logical extent, baseline priority in [0,10), fresh UUID identity.
// Deterministic for a seeded rng (UUIDs aside, which only name carriers).
func RandomRequest(cfg PlanConfig, rng *rand.Rand) Request {
	return Request{
		Beam: BeamCoord{
			Row: cfg.RowMargin() + rng.Intn(cfg.BeamRows),
			Col: cfg.ColMargin() + rng.Intn(cfg.BeamCols),
		},
		Priority: rng.Intn(maxSynthPriority),
		ID:       CarrierID(uuid.New().String()),
	}
}

// Synthesise allocates n random carriers into plan and returns their
// placements in allocation order. It stops at the first exhaustion, since
// every later draw on a full plan would exhaust too.
func Synthesise(plan *Plan, n int, rng *rand.Rand) ([]Placement, error) {
	placements := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		req := RandomRequest(plan.Config, rng)
		pl, err := plan.Allocate(req)
		if err != nil {
			return placements, fmt.Errorf("synthesise carrier %d/%d: %w", i+1, n, err)
		}
		placements = append(placements, pl)
	}
	return placements, nil
}

// RandomActiveCarrier picks one active carrier uniformly, for churn
// simulation (deallocate/reallocate cycles). Keys are sorted before the
// draw so the choice depends only on the rng and the carrier set. Returns
// false on an empty plan.
func RandomActiveCarrier(plan *Plan, rng *rand.Rand) (CarrierKey, bool) {
	plan.mu.Lock()
	keys := make([]CarrierKey, 0, len(plan.Carriers))
	for key := range plan.Carriers {
		keys = append(keys, key)
	}
	plan.mu.Unlock()

	if len(keys) == 0 {
		return CarrierKey{}, false
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Beam.Row != b.Beam.Row {
			return a.Beam.Row < b.Beam.Row
		}
		if a.Beam.Col != b.Beam.Col {
			return a.Beam.Col < b.Beam.Col
		}
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		return a.ID < b.ID
	})
	return keys[rng.Intn(len(keys))], true
}
