package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsWhenUnset(t *testing.T) {
	cfg := &PlanSettings{}
	pc := cfg.PlanConfig()
	if pc.BeamRows != 14 || pc.BeamCols != 14 {
		t.Errorf("default extent = %dx%d, want 14x14", pc.BeamRows, pc.BeamCols)
	}
	if pc.PadRows != 4 || pc.PadCols != 8 {
		t.Errorf("default padding = +%d/+%d, want +4/+8", pc.PadRows, pc.PadCols)
	}
	if pc.Channels != 40 {
		t.Errorf("default channels = %d, want 40", pc.Channels)
	}
	if got := cfg.GetSynthCarriers(); got != 1000 {
		t.Errorf("default synth_carriers = %d, want 1000", got)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(`{"beam_rows": 20, "channel_count": 16}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadPlanSettings(path)
	if err != nil {
		t.Fatalf("LoadPlanSettings: %v", err)
	}
	if got := cfg.GetBeamRows(); got != 20 {
		t.Errorf("beam_rows = %d, want 20", got)
	}
	if got := cfg.GetChannelCount(); got != 16 {
		t.Errorf("channel_count = %d, want 16", got)
	}
	// untouched field keeps its default
	if got := cfg.GetBeamCols(); got != 14 {
		t.Errorf("beam_cols = %d, want default 14", got)
	}
}

func TestLoadRejectsBadGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	// padding too small for the reuse template
	if err := os.WriteFile(path, []byte(`{"pad_cols": 2}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlanSettings(path); err == nil {
		t.Error("expected geometry validation error, got nil")
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	if _, err := LoadPlanSettings("plan.yaml"); err == nil {
		t.Error("expected extension error, got nil")
	}
}
