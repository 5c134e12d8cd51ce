// Package screen provides device screen capture
package screen

import (
	"bytes"
	"context"
	"image"
	"time"

	"github.com/disintegration/imaging"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Frame is one decoded screen capture.
type Frame struct {
	Image      image.Image
	Raw        []byte
	CapturedAt time.Time
}

// Bounds returns the frame's pixel bounds.
func (f *Frame) Bounds() image.Rectangle {
	return f.Image.Bounds()
}

// Capturer captures frames. A failed capture returns a CAPTURE_FAILED error
// and never a nil frame with a nil error.
type Capturer interface {
	Capture(ctx context.Context) (*Frame, error)
	Close()
}

// backend produces encoded image bytes.
type backend interface {
	captureRaw(ctx context.Context) ([]byte, error)
	cleanup()
}

// baseCapturer decodes backend output and waits out transport latency.
type baseCapturer struct {
	backend
	delay time.Duration
	now   func() time.Time
}

func newBase(b backend, delay time.Duration) *baseCapturer {
	return &baseCapturer{backend: b, delay: delay, now: time.Now}
}

func (c *baseCapturer) Capture(ctx context.Context) (*Frame, error) {
	raw, err := c.captureRaw(ctx)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeCaptureFailed, "decode %d byte capture", len(raw))
	}
	frame := &Frame{Image: img, Raw: raw, CapturedAt: c.now()}

	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return frame, nil
}

func (c *baseCapturer) Close() {
	c.cleanup()
}
