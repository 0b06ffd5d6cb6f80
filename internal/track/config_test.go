package track

import (
	"strings"
	"testing"

	"github.com/banshee-data/trackgen/internal/monitoring"
)

func TestPresetNamesOrder(t *testing.T) {
	want := []string{"Contest Rules", "Small Straights", "Computer Friendly", "Bezier"}
	got := PresetNames()
	if len(got) != len(want) {
		t.Fatalf("PresetNames returned %d names, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PresetNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPresetConfigKnown(t *testing.T) {
	cfg := PresetConfig("Contest Rules")
	if cfg.MinStraight != 10 || cfg.MaxStraight != 80 {
		t.Errorf("straight bounds = [%v, %v], want [10, 80]", cfg.MinStraight, cfg.MaxStraight)
	}
	if cfg.MaxLength != 1500 {
		t.Errorf("MaxLength = %v, want 1500", cfg.MaxLength)
	}
	if cfg.LaxGeneration {
		t.Error("Contest Rules should keep strict generation")
	}
	if cfg.Mode != ModeCircleAndLine {
		t.Errorf("Mode = %v, want ModeCircleAndLine", cfg.Mode)
	}

	if bez := PresetConfig("Bezier"); bez.Mode != ModeBezier {
		t.Errorf("Bezier preset Mode = %v, want ModeBezier", bez.Mode)
	}
}

func TestPresetConfigUnknownFallsBack(t *testing.T) {
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })

	var logged strings.Builder
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged.WriteString(format)
	})

	got := PresetConfig("No Such Preset")
	if want := PresetConfig("Contest Rules"); got != want {
		t.Errorf("unknown preset = %+v, want the Contest Rules config", got)
	}
	if !strings.Contains(logged.String(), "no preset") {
		t.Errorf("fallback did not log, got %q", logged.String())
	}
}

func TestPresetConfigReturnsCopy(t *testing.T) {
	cfg := PresetConfig(DefaultPreset)
	cfg.MaxLength = 1
	if again := PresetConfig(DefaultPreset); again.MaxLength == 1 {
		t.Error("mutating a returned config leaked into the preset table")
	}
}

func TestConfigVectorRoundTrip(t *testing.T) {
	for _, name := range PresetNames() {
		cfg := PresetConfig(name)
		back, err := ConfigFromVector(cfg.Vector())
		if err != nil {
			t.Fatalf("%s: ConfigFromVector: %v", name, err)
		}
		if back != cfg {
			t.Errorf("%s: round trip changed config: %+v != %+v", name, back, cfg)
		}
	}
}

func TestConfigVectorLayout(t *testing.T) {
	cfg := Config{
		MinStraight:     1,
		MaxStraight:     2,
		MinConstantTurn: 3,
		MaxConstantTurn: 4,
		MinHairpin:      5,
		MaxHairpin:      6,
		MaxHairpinPairs: 7,
		MaxLength:       8,
		LaxGeneration:   true,
		Mode:            ModeBezier,
	}
	v := cfg.Vector()
	if len(v) != 10 {
		t.Fatalf("Vector length = %d, want 10", len(v))
	}
	want := []float64{1, 2, 3, 4, 5, 6, 7, 8, 1, 1}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("Vector[%d] = %v, want %v", i, v[i], want[i])
		}
	}
}

func TestConfigFromVectorBadLength(t *testing.T) {
	if _, err := ConfigFromVector(make([]float64, 9)); err == nil {
		t.Error("ConfigFromVector accepted a 9 field vector")
	}
}

func TestMinHairpinPairs(t *testing.T) {
	cfg := Config{MaxHairpinPairs: 3}
	if got := cfg.MinHairpinPairs(); got != 1 {
		t.Errorf("MinHairpinPairs with pairs allowed = %d, want 1", got)
	}
	cfg.MaxHairpinPairs = 0
	if got := cfg.MinHairpinPairs(); got != 0 {
		t.Errorf("MinHairpinPairs with no pairs = %d, want 0", got)
	}
}

func TestModeStrings(t *testing.T) {
	if ModeCircleAndLine.String() != "Circle&Line" || ModeBezier.String() != "Bezier" {
		t.Errorf("mode strings = %q, %q", ModeCircleAndLine, ModeBezier)
	}
	if ParseMode("Bezier") != ModeBezier {
		t.Error(`ParseMode("Bezier") != ModeBezier`)
	}
	if ParseMode("Circle&Line") != ModeCircleAndLine {
		t.Error(`ParseMode("Circle&Line") != ModeCircleAndLine`)
	}
	if ParseMode("garbage") != ModeCircleAndLine {
		t.Error("ParseMode of unknown text should fall back to ModeCircleAndLine")
	}
}
