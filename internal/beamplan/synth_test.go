package beamplan

import (
	"math/rand"
	"testing"
)

func TestRandomRequestStaysInRange(t *testing.T) {
	cfg := DefaultPlanConfig()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		req := RandomRequest(cfg, rng)
		if !cfg.InRange(req.Beam) {
			t.Fatalf("request %d: beam %v outside logical extent", i, req.Beam)
		}
		if req.Priority < 0 || req.Priority >= maxSynthPriority {
			t.Fatalf("request %d: priority %d outside [0,%d)", i, req.Priority, maxSynthPriority)
		}
		if req.ID == "" {
			t.Fatalf("request %d: empty identity", i)
		}
	}
}

func TestSynthesisePlacesRequestedCount(t *testing.T) {
	plan := mustPlan(t)
	rng := rand.New(rand.NewSource(7))

	placements, err := Synthesise(plan, 200, rng)
	if err != nil {
		t.Fatalf("Synthesise: %v", err)
	}
	if len(placements) != 200 {
		t.Fatalf("placed %d carriers, want 200", len(placements))
	}
	if got := plan.CarrierCount(); got != 200 {
		t.Errorf("carrier count = %d, want 200", got)
	}
	if got := plan.Grid.OccupiedCount(); got != 200 {
		t.Errorf("occupied slots = %d, want 200", got)
	}
}

func TestSynthesiseIdentitiesUnique(t *testing.T) {
	plan := mustPlan(t)
	rng := rand.New(rand.NewSource(11))
	if _, err := Synthesise(plan, 300, rng); err != nil {
		t.Fatalf("Synthesise: %v", err)
	}

	seen := make(map[CarrierID]bool)
	for key := range plan.Carriers {
		if seen[key.ID] {
			t.Fatalf("identity %q appears twice", key.ID)
		}
		seen[key.ID] = true
	}
}

func TestRandomActiveCarrier(t *testing.T) {
	plan := mustPlan(t)
	rng := rand.New(rand.NewSource(3))

	if _, ok := RandomActiveCarrier(plan, rng); ok {
		t.Error("empty plan returned an active carrier")
	}

	if _, err := Synthesise(plan, 50, rng); err != nil {
		t.Fatalf("Synthesise: %v", err)
	}
	key, ok := RandomActiveCarrier(plan, rng)
	if !ok {
		t.Fatal("no carrier returned from populated plan")
	}
	if _, registered := plan.Priority(key); !registered {
		t.Errorf("returned key %s not in registry", key)
	}

	// Churn: the selected carrier can be deallocated and the slot reused.
	if err := plan.Deallocate(key); err != nil {
		t.Fatalf("Deallocate: %v", err)
	}
	if got := plan.CarrierCount(); got != 49 {
		t.Errorf("carrier count = %d, want 49", got)
	}
}
