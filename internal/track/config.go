package track

import (
	"fmt"

	"github.com/banshee-data/trackgen/internal/monitoring"
)

// Mode selects the composition strategy for a full track loop.
type Mode int

const (
	// ModeCircleAndLine composes straights, constant turns and hairpin
	// switchbacks, steered through the checkpoints by the arc solver.
	ModeCircleAndLine Mode = iota
	// ModeBezier strings cubic Bezier curves through the checkpoints.
	ModeBezier
)

// String returns the display name of the mode.
func (m Mode) String() string {
	if m == ModeBezier {
		return "Bezier"
	}
	return "Circle&Line"
}

// ParseMode maps a mode name to its Mode. Anything unrecognized is
// Circle&Line.
func ParseMode(s string) Mode {
	if s == "Bezier" {
		return ModeBezier
	}
	return ModeCircleAndLine
}

func modeFromNumber(n float64) Mode {
	if n == 1 {
		return ModeBezier
	}
	return ModeCircleAndLine
}

func (m Mode) number() float64 {
	if m == ModeBezier {
		return 1
	}
	return 0
}

// Config bounds the geometry of a generated track. All lengths and
// radii are in meters. The zero value is not a usable configuration;
// start from a preset or a parameter vector.
type Config struct {
	MinStraight     float64
	MaxStraight     float64
	MinConstantTurn float64
	MaxConstantTurn float64
	MinHairpin      float64
	MaxHairpin      float64
	MaxHairpinPairs int
	MaxLength       float64
	// LaxGeneration skips the closing-straight and total-length checks,
	// trading rule compliance for a much higher compose success rate.
	LaxGeneration bool
	Mode          Mode
}

// MinHairpinPairs is the lower bound for hairpin pair draws: one pair
// whenever hairpins are allowed at all.
func (c Config) MinHairpinPairs() int {
	if c.MaxHairpinPairs > 0 {
		return 1
	}
	return 0
}

// Vector flattens the configuration into the 10-field parameter order
// used by preset tables and request payloads.
func (c Config) Vector() []float64 {
	lax := 0.0
	if c.LaxGeneration {
		lax = 1
	}
	return []float64{
		c.MinStraight,
		c.MaxStraight,
		c.MinConstantTurn,
		c.MaxConstantTurn,
		c.MinHairpin,
		c.MaxHairpin,
		float64(c.MaxHairpinPairs),
		c.MaxLength,
		lax,
		c.Mode.number(),
	}
}

// ConfigFromVector builds a Config from the 10-field parameter order.
func ConfigFromVector(v []float64) (Config, error) {
	if len(v) != 10 {
		return Config{}, fmt.Errorf("config vector has %d fields, want 10", len(v))
	}
	return Config{
		MinStraight:     v[0],
		MaxStraight:     v[1],
		MinConstantTurn: v[2],
		MaxConstantTurn: v[3],
		MinHairpin:      v[4],
		MaxHairpin:      v[5],
		MaxHairpinPairs: int(v[6]),
		MaxLength:       v[7],
		LaxGeneration:   v[8] == 1,
		Mode:            modeFromNumber(v[9]),
	}, nil
}

// DefaultPreset is the preset used when a caller does not pick one.
const DefaultPreset = "Small Straights"

// fallbackPreset absorbs unknown preset names.
const fallbackPreset = "Contest Rules"

var presets = []struct {
	name string
	cfg  Config
}{
	{"Contest Rules", Config{
		MinStraight:     10,
		MaxStraight:     80,
		MinConstantTurn: 10,
		MaxConstantTurn: 25,
		MinHairpin:      4.5,
		MaxHairpin:      10,
		MaxHairpinPairs: 3,
		MaxLength:       1500,
		Mode:            ModeCircleAndLine,
	}},
	{"Small Straights", Config{
		MinStraight:     5,
		MaxStraight:     40,
		MinConstantTurn: 10,
		MaxConstantTurn: 25,
		MinHairpin:      4.5,
		MaxHairpin:      10,
		MaxHairpinPairs: 3,
		MaxLength:       700,
		LaxGeneration:   true,
		Mode:            ModeCircleAndLine,
	}},
	{"Computer Friendly", Config{
		MinStraight:     10,
		MaxStraight:     80,
		MinConstantTurn: 5,
		MaxConstantTurn: 15,
		MinHairpin:      4.5,
		MaxHairpin:      10,
		MaxHairpinPairs: 3,
		MaxLength:       500,
		LaxGeneration:   true,
		Mode:            ModeCircleAndLine,
	}},
	{"Bezier", Config{
		MinStraight:     10,
		MaxStraight:     80,
		MinConstantTurn: 5,
		MaxConstantTurn: 15,
		MinHairpin:      4.5,
		MaxHairpin:      10,
		MaxHairpinPairs: 3,
		MaxLength:       500,
		LaxGeneration:   true,
		Mode:            ModeBezier,
	}},
}

// PresetNames lists the built-in presets in display order.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	return names
}

// PresetConfig resolves a preset by name. Unknown names fall back to
// the contest-rules preset with a logged diagnostic so a bad request
// still produces a track.
func PresetConfig(name string) Config {
	for _, p := range presets {
		if p.name == name {
			return p.cfg
		}
	}
	monitoring.Logf("[Generator] no preset %q, defaulting to %s", name, fallbackPreset)
	return PresetConfig(fallbackPreset)
}
