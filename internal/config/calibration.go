// Package config loads decoder calibration files.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/irdump/internal/fsutil"
	"github.com/banshee-data/irdump/internal/irdecode"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// CalibrationConfig overrides the timing calibration of the decoder. Fields
// omitted from the file keep the defaults of irdecode.DefaultProtocol, so
// partial configs are safe. Ranges are written as [min, max] with max
// exclusive.
type CalibrationConfig struct {
	UnitMicros        *uint32  `json:"unit_micros,omitempty" yaml:"unit_micros,omitempty"`
	LongUnits         *uint32  `json:"long_units,omitempty" yaml:"long_units,omitempty"`
	DumpStartMinUnits *uint32  `json:"dump_start_min_units,omitempty" yaml:"dump_start_min_units,omitempty"`
	LeaderPulseUnits  []uint32 `json:"leader_pulse_units,omitempty" yaml:"leader_pulse_units,omitempty"`
	LeaderPauseUnits  []uint32 `json:"leader_pause_units,omitempty" yaml:"leader_pause_units,omitempty"`
	GapPauseUnits     []uint32 `json:"gap_pause_units,omitempty" yaml:"gap_pause_units,omitempty"`
}

func ptrUint32(v uint32) *uint32 { return &v }

// EmptyCalibrationConfig returns a config with every field unset.
func EmptyCalibrationConfig() *CalibrationConfig {
	return &CalibrationConfig{}
}

// DefaultCalibrationConfig returns a config with every field set to the
// default protocol values.
func DefaultCalibrationConfig() *CalibrationConfig {
	p := irdecode.DefaultProtocol()
	return &CalibrationConfig{
		UnitMicros:        ptrUint32(p.UnitMicros),
		LongUnits:         ptrUint32(p.LongUnits),
		DumpStartMinUnits: ptrUint32(p.DumpStartMinUnits),
		LeaderPulseUnits:  []uint32{p.LeaderPulseUnits.Min, p.LeaderPulseUnits.Max},
		LeaderPauseUnits:  []uint32{p.LeaderPauseUnits.Min, p.LeaderPauseUnits.Max},
		GapPauseUnits:     []uint32{p.GapPauseUnits.Min, p.GapPauseUnits.Max},
	}
}

// LoadCalibrationConfig reads a calibration file from fsys. The format is
// chosen by extension: .json, .yaml or .yml.
func LoadCalibrationConfig(fsys fsutil.FileSystem, path string) (*CalibrationConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyCalibrationConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks field shapes and then the resulting protocol.
func (c *CalibrationConfig) Validate() error {
	for _, r := range []struct {
		name string
		v    []uint32
	}{
		{"leader_pulse_units", c.LeaderPulseUnits},
		{"leader_pause_units", c.LeaderPauseUnits},
		{"gap_pause_units", c.GapPauseUnits},
	} {
		if r.v != nil && len(r.v) != 2 {
			return fmt.Errorf("%s must be [min, max], got %d values", r.name, len(r.v))
		}
	}
	return c.Protocol().Validate()
}

// GetUnitMicros returns the unit_micros value or the default.
func (c *CalibrationConfig) GetUnitMicros() uint32 {
	if c.UnitMicros == nil {
		return irdecode.DefaultProtocol().UnitMicros
	}
	return *c.UnitMicros
}

// GetLongUnits returns the long_units value or the default.
func (c *CalibrationConfig) GetLongUnits() uint32 {
	if c.LongUnits == nil {
		return irdecode.DefaultProtocol().LongUnits
	}
	return *c.LongUnits
}

// GetDumpStartMinUnits returns the dump_start_min_units value or the default.
func (c *CalibrationConfig) GetDumpStartMinUnits() uint32 {
	if c.DumpStartMinUnits == nil {
		return irdecode.DefaultProtocol().DumpStartMinUnits
	}
	return *c.DumpStartMinUnits
}

// GetLeaderPulseUnits returns the leader_pulse_units range or the default.
func (c *CalibrationConfig) GetLeaderPulseUnits() irdecode.UnitRange {
	return unitRange(c.LeaderPulseUnits, irdecode.DefaultProtocol().LeaderPulseUnits)
}

// GetLeaderPauseUnits returns the leader_pause_units range or the default.
func (c *CalibrationConfig) GetLeaderPauseUnits() irdecode.UnitRange {
	return unitRange(c.LeaderPauseUnits, irdecode.DefaultProtocol().LeaderPauseUnits)
}

// GetGapPauseUnits returns the gap_pause_units range or the default.
func (c *CalibrationConfig) GetGapPauseUnits() irdecode.UnitRange {
	return unitRange(c.GapPauseUnits, irdecode.DefaultProtocol().GapPauseUnits)
}

func unitRange(v []uint32, def irdecode.UnitRange) irdecode.UnitRange {
	if len(v) != 2 {
		return def
	}
	return irdecode.UnitRange{Min: v[0], Max: v[1]}
}

// Protocol builds the decoder calibration described by the config.
func (c *CalibrationConfig) Protocol() irdecode.Protocol {
	return irdecode.Protocol{
		UnitMicros:        c.GetUnitMicros(),
		LongUnits:         c.GetLongUnits(),
		DumpStartMinUnits: c.GetDumpStartMinUnits(),
		LeaderPulseUnits:  c.GetLeaderPulseUnits(),
		LeaderPauseUnits:  c.GetLeaderPauseUnits(),
		GapPauseUnits:     c.GetGapPauseUnits(),
	}
}
