package screen

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/resilience"
	screencap "github.com/Not-Dhanraj/Star-Scout/internal/screen"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

var errUnrecognized = errors.New("screen not recognized")

// ImageSink stores diagnostic images. A nil sink disables saving.
type ImageSink interface {
	SaveImage(name string, img image.Image) (string, error)
}

// Detection is the outcome of one capture-and-classify.
type Detection struct {
	State    State
	Text     string
	Frame    *screencap.Frame
	Attempts int
}

// Detector captures a frame, reads it and classifies it.
type Detector struct {
	capturer   screencap.Capturer
	recognizer ocr.Recognizer
	classifier *Classifier
	attempts   int
	pause      time.Duration
	sink       ImageSink
}

// NewDetector retries UNKNOWN frames and capture faults up to attempts times,
// pausing between tries.
func NewDetector(c screencap.Capturer, r ocr.Recognizer, cl *Classifier, attempts int, pause time.Duration) *Detector {
	if attempts < 1 {
		attempts = 1
	}
	return &Detector{capturer: c, recognizer: r, classifier: cl, attempts: attempts, pause: pause}
}

// WithSink saves frames that end up UNKNOWN.
func (d *Detector) WithSink(s ImageSink) *Detector {
	d.sink = s
	return d
}

// Classifier returns the rule set in use.
func (d *Detector) Classifier() *Classifier { return d.classifier }

// Detect returns the first known state within the retry budget, or UNKNOWN
// once it is spent. Only cancellation produces an error.
func (d *Detector) Detect(ctx context.Context) (Detection, error) {
	return d.detect(ctx, d.attempts)
}

// DetectOnce is a single capture-and-classify with no retries.
func (d *Detector) DetectOnce(ctx context.Context) (Detection, error) {
	return d.detect(ctx, 1)
}

func (d *Detector) detect(ctx context.Context, attempts int) (Detection, error) {
	ctx, span := trace.StartSpan(ctx, "detect")
	defer span.End()
	log := trace.Logger(ctx)

	tries := 0
	cfg := resilience.ConstantRetryConfig(attempts, d.pause, func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	})
	det, err := resilience.RetryValue(ctx, cfg, func() (Detection, error) {
		tries++
		frame, err := d.capturer.Capture(ctx)
		if err != nil {
			log.Warn("capture failed", "attempt", tries, "error", err)
			return Detection{State: StateUnknown, Attempts: tries}, err
		}
		det := d.Observe(ctx, frame)
		det.Attempts = tries
		if !det.State.Known() {
			return det, fmt.Errorf("attempt %d: %w", tries, errUnrecognized)
		}
		return det, nil
	})
	span.SetAttr("attempts", tries)
	span.SetAttr("state", det.State)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return det, ctxErr
		}
		d.explainUnknown(ctx, det)
		det.State = StateUnknown
	}
	return det, nil
}

// Observe classifies an already captured frame.
func (d *Detector) Observe(ctx context.Context, frame *screencap.Frame) Detection {
	text := ocr.ReadScreen(ctx, d.recognizer, frame.Image)
	return Detection{State: d.classifier.Classify(text), Text: text, Frame: frame}
}

func (d *Detector) explainUnknown(ctx context.Context, det Detection) {
	log := trace.Logger(ctx)
	if phrase, dist, ok := d.classifier.Nearest(det.Text); ok {
		log.Debug("unknown screen", "nearest", phrase, "distance", dist, "text_len", len(det.Text))
	}
	if d.sink == nil || det.Frame == nil {
		return
	}
	name := fmt.Sprintf("unknown_%d.png", det.Frame.CapturedAt.UnixMilli())
	if path, err := d.sink.SaveImage(name, det.Frame.Image); err != nil {
		log.Warn("save unknown frame failed", "error", err)
	} else {
		log.Debug("saved unknown frame", "path", path)
	}
}
