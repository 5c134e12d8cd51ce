package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.TargetMin != 114 || cfg.TargetMax != 115 {
		t.Errorf("target = [%d,%d], want [114,115]", cfg.TargetMin, cfg.TargetMax)
	}
	if cfg.AttributeMin != 80 || cfg.AttributeMax != 150 {
		t.Errorf("attribute range = [%d,%d], want [80,150]", cfg.AttributeMin, cfg.AttributeMax)
	}
	if cfg.MatchThreshold != 0.49 {
		t.Errorf("MatchThreshold = %f, want 0.49", cfg.MatchThreshold)
	}
	if len(cfg.Actions.Tiles) != 6 {
		t.Errorf("tiles = %d, want 6", len(cfg.Actions.Tiles))
	}
	if cfg.Actions.FreeReveal != (Point{1182, 926}) {
		t.Errorf("FreeReveal = %+v", cfg.Actions.FreeReveal)
	}
	if cfg.Delays.Retry != 500*time.Millisecond {
		t.Errorf("Delays.Retry = %v, want 500ms", cfg.Delays.Retry)
	}
	if cfg.RetryAttempts != 3 || cfg.UnknownLimit != 5 {
		t.Errorf("RetryAttempts/UnknownLimit = %d/%d, want 3/5", cfg.RetryAttempts, cfg.UnknownLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scout.yaml")
	data := []byte(`
target_min: 110
target_max: 112
match_threshold: 0.6
delays:
  action: 1500ms
check_region: {x1: 10, y1: 20, x2: 110, y2: 220}
actions:
  tiles:
    - {x: 1, y: 2}
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TargetMin != 110 || cfg.TargetMax != 112 {
		t.Errorf("target = [%d,%d], want [110,112]", cfg.TargetMin, cfg.TargetMax)
	}
	if cfg.MatchThreshold != 0.6 {
		t.Errorf("MatchThreshold = %f, want 0.6", cfg.MatchThreshold)
	}
	if cfg.Delays.Action != 1500*time.Millisecond {
		t.Errorf("Delays.Action = %v, want 1.5s", cfg.Delays.Action)
	}
	if cfg.Delays.Click != 300*time.Millisecond {
		t.Errorf("Delays.Click = %v, default should survive", cfg.Delays.Click)
	}
	if cfg.CheckRegion != (Rect{10, 20, 110, 220}) {
		t.Errorf("CheckRegion = %+v", cfg.CheckRegion)
	}
	if len(cfg.Actions.Tiles) != 1 {
		t.Errorf("tiles = %d, want 1", len(cfg.Actions.Tiles))
	}
	if cfg.Actions.Yes != (Point{1411, 817}) {
		t.Errorf("Yes = %+v, default should survive", cfg.Actions.Yes)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !apperrors.IsCode(err, apperrors.CodeConfigInvalid) {
		t.Errorf("Load(missing) error = %v, want CONFIG_INVALID", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCOUT_TARGET_MIN", "100")
	t.Setenv("SCOUT_TARGET_MAX", "101")
	t.Setenv("SCOUT_MATCH_THRESHOLD", "0.75")
	t.Setenv("SCOUT_DEBUG", "1")
	t.Setenv("SCOUT_ADB_SERIAL", "emulator-5554")
	t.Setenv("SCOUT_TILES", "10:20, 30:40")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TargetMin != 100 || cfg.TargetMax != 101 {
		t.Errorf("target = [%d,%d], want [100,101]", cfg.TargetMin, cfg.TargetMax)
	}
	if cfg.MatchThreshold != 0.75 {
		t.Errorf("MatchThreshold = %f, want 0.75", cfg.MatchThreshold)
	}
	if !cfg.Debug {
		t.Error("Debug should be enabled")
	}
	if cfg.ADBSerial != "emulator-5554" {
		t.Errorf("ADBSerial = %q", cfg.ADBSerial)
	}
	want := []Point{{10, 20}, {30, 40}}
	if len(cfg.Actions.Tiles) != 2 || cfg.Actions.Tiles[0] != want[0] || cfg.Actions.Tiles[1] != want[1] {
		t.Errorf("Tiles = %+v, want %+v", cfg.Actions.Tiles, want)
	}
}

func TestEnvInvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("SCOUT_TARGET_MIN", "abc")
	t.Setenv("SCOUT_MATCH_THRESHOLD", "high")
	t.Setenv("SCOUT_TILES", "nonsense")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TargetMin != 114 {
		t.Errorf("TargetMin = %d, want 114", cfg.TargetMin)
	}
	if cfg.MatchThreshold != 0.49 {
		t.Errorf("MatchThreshold = %f, want 0.49", cfg.MatchThreshold)
	}
	if len(cfg.Actions.Tiles) != 6 {
		t.Errorf("tiles = %d, want 6", len(cfg.Actions.Tiles))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   apperrors.Code
	}{
		{"inverted target", func(c *Config) { c.TargetMin, c.TargetMax = 120, 110 }, apperrors.CodeConfigInvalid},
		{"inverted attribute", func(c *Config) { c.AttributeMin = 200 }, apperrors.CodeConfigInvalid},
		{"zero threshold", func(c *Config) { c.MatchThreshold = 0 }, apperrors.CodeConfigInvalid},
		{"threshold above one", func(c *Config) { c.MatchThreshold = 1.2 }, apperrors.CodeConfigInvalid},
		{"degenerate region", func(c *Config) { c.CheckRegion = Rect{10, 10, 10, 50} }, apperrors.CodeRegionInvalid},
		{"negative region", func(c *Config) { c.CheckRegion = Rect{-1, 0, 10, 10} }, apperrors.CodeRegionInvalid},
		{"no tiles", func(c *Config) { c.Actions.Tiles = nil }, apperrors.CodeConfigInvalid},
		{"no retries", func(c *Config) { c.RetryAttempts = 0 }, apperrors.CodeConfigInvalid},
		{"bad backend", func(c *Config) { c.OCRBackend = "cloud" }, apperrors.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !apperrors.IsCode(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("SCOUT_TEST_LIST", "a, b,,c ")
	got := getEnvList("SCOUT_TEST_LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("getEnvList = %v, want [a b c]", got)
	}
	if def := getEnvList("SCOUT_TEST_LIST_UNSET", []string{"x"}); len(def) != 1 {
		t.Errorf("default list = %v", def)
	}
}
