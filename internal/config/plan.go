package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skyfield-data/spectrum.report/internal/beamplan"
)

// PlanSettings is the JSON configuration for the planner daemon and
// tools. Fields are pointers so a partial file only overrides what it
// names; the Get* accessors supply defaults for the rest.
type PlanSettings struct {
	// Plan geometry
	BeamRows     *int `json:"beam_rows,omitempty"`
	BeamCols     *int `json:"beam_cols,omitempty"`
	PadRows      *int `json:"pad_rows,omitempty"`
	PadCols      *int `json:"pad_cols,omitempty"`
	ChannelCount *int `json:"channel_count,omitempty"`

	// Workload synthesis
	SynthCarriers *int   `json:"synth_carriers,omitempty"`
	SynthSeed     *int64 `json:"synth_seed,omitempty"`
}

// LoadPlanSettings loads settings from a JSON file. The file must have a
// .json extension; omitted fields keep their defaults, so partial configs
// are safe.
func LoadPlanSettings(path string) (*PlanSettings, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &PlanSettings{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configured values form a usable geometry.
func (c *PlanSettings) Validate() error {
	if err := c.PlanConfig().Validate(); err != nil {
		return err
	}
	if c.SynthCarriers != nil && *c.SynthCarriers < 0 {
		return fmt.Errorf("synth_carriers must be non-negative, got %d", *c.SynthCarriers)
	}
	return nil
}

// PlanConfig assembles the effective beamplan geometry.
func (c *PlanSettings) PlanConfig() beamplan.PlanConfig {
	return beamplan.PlanConfig{
		BeamRows: c.GetBeamRows(),
		BeamCols: c.GetBeamCols(),
		PadRows:  c.GetPadRows(),
		PadCols:  c.GetPadCols(),
		Channels: c.GetChannelCount(),
	}
}

// GetBeamRows returns the beam_rows value or the default.
func (c *PlanSettings) GetBeamRows() int {
	if c.BeamRows == nil {
		return beamplan.DefaultBeamRows
	}
	return *c.BeamRows
}

// GetBeamCols returns the beam_cols value or the default.
func (c *PlanSettings) GetBeamCols() int {
	if c.BeamCols == nil {
		return beamplan.DefaultBeamCols
	}
	return *c.BeamCols
}

// GetPadRows returns the pad_rows value or the default.
func (c *PlanSettings) GetPadRows() int {
	if c.PadRows == nil {
		return beamplan.DefaultPadRows
	}
	return *c.PadRows
}

// GetPadCols returns the pad_cols value or the default.
func (c *PlanSettings) GetPadCols() int {
	if c.PadCols == nil {
		return beamplan.DefaultPadCols
	}
	return *c.PadCols
}

// GetChannelCount returns the channel_count value or the default.
func (c *PlanSettings) GetChannelCount() int {
	if c.ChannelCount == nil {
		return beamplan.DefaultChannels
	}
	return *c.ChannelCount
}

// GetSynthCarriers returns the synth_carriers value or the default.
func (c *PlanSettings) GetSynthCarriers() int {
	if c.SynthCarriers == nil {
		return 1000
	}
	return *c.SynthCarriers
}

// GetSynthSeed returns the synth_seed value or the default.
func (c *PlanSettings) GetSynthSeed() int64 {
	if c.SynthSeed == nil {
		return 1
	}
	return *c.SynthSeed
}
