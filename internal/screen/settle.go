package screen

import (
	"context"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// SettleOptions bounds the wait for an animating screen to come to rest.
type SettleOptions struct {
	MaxCaptures int           // captures before giving up and using the last frame
	MaxDistance int           // pHash Hamming distance treated as "unchanged"
	Interval    time.Duration // pause between captures
}

// CaptureSettled captures until two consecutive frames are perceptually equal
// or MaxCaptures is reached, and returns the last frame. With MaxCaptures <= 1
// it is a single capture.
func CaptureSettled(ctx context.Context, c Capturer, opts SettleOptions) (*Frame, error) {
	frame, err := c.Capture(ctx)
	if err != nil || opts.MaxCaptures <= 1 {
		return frame, err
	}
	prev, _ := goimagehash.PerceptionHash(frame.Image)

	for i := 1; i < opts.MaxCaptures; i++ {
		if err := sleep(ctx, opts.Interval); err != nil {
			return frame, err
		}
		next, err := c.Capture(ctx)
		if err != nil {
			return frame, nil
		}
		frame = next

		hash, err := goimagehash.PerceptionHash(frame.Image)
		if err != nil || prev == nil {
			prev = hash
			continue
		}
		dist, err := prev.Distance(hash)
		if err == nil && dist <= opts.MaxDistance {
			trace.Logger(ctx).Debug("frame settled", "captures", i+1, "distance", dist)
			return frame, nil
		}
		prev = hash
	}
	trace.Logger(ctx).Debug("frame still changing, using last capture", "captures", opts.MaxCaptures)
	return frame, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
