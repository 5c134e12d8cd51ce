// Package config handles scout configuration
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Point is a calibrated device coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Rect is the template search rectangle in full-frame pixels.
type Rect struct {
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
	X2 int `yaml:"x2"`
	Y2 int `yaml:"y2"`
}

// Actions holds one coordinate per logical tap.
type Actions struct {
	FreeReveal Point   `yaml:"free_reveal"`
	Yes        Point   `yaml:"yes"`
	No         Point   `yaml:"no"`
	Skip       Point   `yaml:"skip"`
	Refresh    Point   `yaml:"refresh"`
	Dismiss    Point   `yaml:"dismiss"`
	Tiles      []Point `yaml:"tiles"`
}

// Delays are the fixed pauses of the loop.
type Delays struct {
	Click   time.Duration `yaml:"click"`
	Action  time.Duration `yaml:"action"`
	OCR     time.Duration `yaml:"ocr"`
	Capture time.Duration `yaml:"capture"`
	Retry   time.Duration `yaml:"retry"`
	Backoff time.Duration `yaml:"backoff"`
	Error   time.Duration `yaml:"error"`
}

type Config struct {
	TargetMin int `yaml:"target_min"`
	TargetMax int `yaml:"target_max"`

	// Plausible OVR range; values outside are OCR noise.
	AttributeMin int `yaml:"attribute_min"`
	AttributeMax int `yaml:"attribute_max"`

	Actions Actions `yaml:"actions"`
	Delays  Delays  `yaml:"delays"`

	RetryAttempts int `yaml:"retry_attempts"`
	UnknownLimit  int `yaml:"unknown_limit"`

	CheckRegion    Rect    `yaml:"check_region"`
	MatchThreshold float64 `yaml:"match_threshold"`
	TemplateDir    string  `yaml:"template_dir"`

	SettleCaptures     int `yaml:"settle_captures"`
	SettleHashDistance int `yaml:"settle_hash_distance"`

	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	ADBPath   string `yaml:"adb_path"`
	ADBSerial string `yaml:"adb_serial"`

	OCRBackend    string `yaml:"ocr_backend"`
	OCRLanguage   string `yaml:"ocr_language"`
	RemoteOCRAddr string `yaml:"remote_ocr_addr"`
	ServeOCRAddr  string `yaml:"serve_ocr_addr"`

	MonitorAddr string `yaml:"monitor_addr"`

	AlertSound     string  `yaml:"alert_sound"`
	AlertFrequency float64 `yaml:"alert_frequency"`
	AlertBeeps     int     `yaml:"alert_beeps"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the calibrated configuration for a 2400x1080 landscape device.
func Default() *Config {
	return &Config{
		TargetMin:    114,
		TargetMax:    115,
		AttributeMin: 80,
		AttributeMax: 150,
		Actions: Actions{
			FreeReveal: Point{1182, 926},
			Yes:        Point{1411, 817},
			No:         Point{989, 817},
			Skip:       Point{425, 1008},
			Refresh:    Point{1940, 1035},
			Dismiss:    Point{200, 540},
			Tiles: []Point{
				{854, 567}, {1183, 567}, {1487, 567},
				{892, 772}, {1183, 772}, {1487, 772},
			},
		},
		Delays: Delays{
			Click:   300 * time.Millisecond,
			Action:  800 * time.Millisecond,
			OCR:     500 * time.Millisecond,
			Capture: 200 * time.Millisecond,
			Retry:   500 * time.Millisecond,
			Backoff: 2 * time.Second,
			Error:   time.Second,
		},
		RetryAttempts:      3,
		UnknownLimit:       5,
		CheckRegion:        Rect{X1: 1560, Y1: 120, X2: 2020, Y2: 420},
		MatchThreshold:     0.49,
		TemplateDir:        "assets/templates",
		SettleCaptures:     3,
		SettleHashDistance: 4,
		DebugDir:           "/tmp/scout_debug",
		ADBPath:            "adb",
		OCRBackend:         "tesseract",
		OCRLanguage:        "eng",
		RemoteOCRAddr:      "localhost:50051",
		ServeOCRAddr:       ":50051",
		AlertFrequency:     880,
		AlertBeeps:         3,
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads the YAML file at path (if any) over the defaults, then applies
// SCOUT_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, apperrors.Wrapf(err, apperrors.CodeConfigInvalid, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, apperrors.Wrapf(err, apperrors.CodeConfigInvalid, "parse config %s", path)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.TargetMin = getEnvInt("SCOUT_TARGET_MIN", c.TargetMin)
	c.TargetMax = getEnvInt("SCOUT_TARGET_MAX", c.TargetMax)
	c.MatchThreshold = getEnvFloat("SCOUT_MATCH_THRESHOLD", c.MatchThreshold)
	c.TemplateDir = getEnv("SCOUT_TEMPLATE_DIR", c.TemplateDir)
	c.Debug = getEnvBool("SCOUT_DEBUG", c.Debug)
	c.DebugDir = getEnv("SCOUT_DEBUG_DIR", c.DebugDir)
	c.ADBPath = getEnv("SCOUT_ADB_PATH", c.ADBPath)
	c.ADBSerial = getEnv("SCOUT_ADB_SERIAL", c.ADBSerial)
	c.OCRBackend = getEnv("SCOUT_OCR_BACKEND", c.OCRBackend)
	c.RemoteOCRAddr = getEnv("SCOUT_REMOTE_OCR_ADDR", c.RemoteOCRAddr)
	c.MonitorAddr = getEnv("SCOUT_MONITOR_ADDR", c.MonitorAddr)
	c.AlertSound = getEnv("SCOUT_ALERT_SOUND", c.AlertSound)
	c.LogLevel = getEnv("SCOUT_LOG_LEVEL", c.LogLevel)
	if tiles := getEnvList("SCOUT_TILES", nil); tiles != nil {
		if pts, err := parsePoints(tiles); err == nil {
			c.Actions.Tiles = pts
		}
	}
}

// Validate rejects configurations the loop cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.TargetMin > c.TargetMax:
		return apperrors.Newf(apperrors.CodeConfigInvalid, "target range inverted: %d > %d", c.TargetMin, c.TargetMax)
	case c.AttributeMin > c.AttributeMax:
		return apperrors.Newf(apperrors.CodeConfigInvalid, "attribute range inverted: %d > %d", c.AttributeMin, c.AttributeMax)
	case c.MatchThreshold <= 0 || c.MatchThreshold > 1:
		return apperrors.Newf(apperrors.CodeConfigInvalid, "match threshold %.2f outside (0,1]", c.MatchThreshold)
	case c.CheckRegion.X1 < 0 || c.CheckRegion.Y1 < 0 ||
		c.CheckRegion.X2 <= c.CheckRegion.X1 || c.CheckRegion.Y2 <= c.CheckRegion.Y1:
		return apperrors.New(apperrors.CodeRegionInvalid, "check region is empty or negative").
			WithMetadata("region", fmt.Sprintf("%+v", c.CheckRegion))
	case len(c.Actions.Tiles) == 0:
		return apperrors.New(apperrors.CodeConfigInvalid, "no tile coordinates configured")
	case c.RetryAttempts < 1:
		return apperrors.Newf(apperrors.CodeConfigInvalid, "retry attempts %d < 1", c.RetryAttempts)
	case c.UnknownLimit < 1:
		return apperrors.Newf(apperrors.CodeConfigInvalid, "unknown limit %d < 1", c.UnknownLimit)
	case c.OCRBackend != "tesseract" && c.OCRBackend != "remote":
		return apperrors.Newf(apperrors.CodeConfigInvalid, "unknown ocr backend %q", c.OCRBackend)
	}
	return nil
}

// parsePoints reads "x:y" pairs.
func parsePoints(parts []string) ([]Point, error) {
	pts := make([]Point, 0, len(parts))
	for _, p := range parts {
		xs, ys, ok := strings.Cut(p, ":")
		if !ok {
			return nil, fmt.Errorf("point %q: want x:y", p)
		}
		x, err := strconv.Atoi(xs)
		if err != nil {
			return nil, err
		}
		y, err := strconv.Atoi(ys)
		if err != nil {
			return nil, err
		}
		pts = append(pts, Point{X: x, Y: y})
	}
	return pts, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
