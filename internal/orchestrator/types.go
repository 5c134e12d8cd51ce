package orchestrator

import (
	"context"
	"image"
	"time"

	"github.com/Not-Dhanraj/Star-Scout/internal/config"
	"github.com/Not-Dhanraj/Star-Scout/internal/match"
)

// Actor issues taps on the device.
type Actor interface {
	Tap(ctx context.Context, p config.Point) error
}

// Notifier tells the user the run is over. Failures are logged, never fatal.
type Notifier interface {
	Notify(ctx context.Context) error
}

// AttributeReader reads the OVR rating from a result frame.
type AttributeReader interface {
	Extract(ctx context.Context, img image.Image) (int, bool)
}

// TemplateMatcher looks for special-card badges in a frame region.
type TemplateMatcher interface {
	Match(frame image.Image, assets match.Assets, region match.Region) match.Result
}

// Outcome is what one iteration concluded.
type Outcome int

const (
	Continue Outcome = iota
	FoundTarget
	FoundSpecial
)

func (o Outcome) String() string {
	switch o {
	case FoundTarget:
		return "found_target"
	case FoundSpecial:
		return "found_special"
	default:
		return "continue"
	}
}

// Result is the terminal summary of Run.
type Result struct {
	Outcome    Outcome       `json:"outcome"`
	Reason     string        `json:"reason"`
	Attribute  int           `json:"attribute,omitempty"`
	Asset      string        `json:"asset,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`
	Iterations int           `json:"iterations"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Status is the snapshot served to the monitor.
type Status struct {
	RunID              string    `json:"run_id"`
	Iteration          int       `json:"iteration"`
	State              string    `json:"state"`
	ConsecutiveUnknown int       `json:"consecutive_unknown"`
	LastAttribute      int       `json:"last_attribute,omitempty"`
	LastAsset          string    `json:"last_asset,omitempty"`
	LastConfidence     float64   `json:"last_confidence"`
	Done               bool      `json:"done"`
	Reason             string    `json:"reason,omitempty"`
	StartedAt          time.Time `json:"started_at"`
}
