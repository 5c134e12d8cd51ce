package alert

import (
	"context"
	"math"
	"time"

	"github.com/gordonklaus/portaudio"
)

// Tone is a pattern of sine beeps separated by silence.
type Tone struct {
	Frequency float64
	Beeps     int
	Beep      time.Duration
	Gap       time.Duration
}

// Samples renders the mono pattern at rate samples per second.
func (t Tone) Samples(rate int) []float32 {
	beep := int(t.Beep.Seconds() * float64(rate))
	gap := int(t.Gap.Seconds() * float64(rate))
	if t.Beeps < 1 || beep < 1 {
		return nil
	}

	out := make([]float32, 0, t.Beeps*beep+(t.Beeps-1)*gap)
	step := 2 * math.Pi * t.Frequency / float64(rate)
	for b := 0; b < t.Beeps; b++ {
		if b > 0 {
			out = append(out, make([]float32, gap)...)
		}
		for i := 0; i < beep; i++ {
			// Short linear fade at both ends avoids clicks.
			env := math.Min(1, math.Min(float64(i), float64(beep-1-i))/200)
			out = append(out, float32(amplitude*env*math.Sin(step*float64(i))))
		}
	}
	return out
}

// play writes the pattern to the default output device.
func (t Tone) play(ctx context.Context) error {
	samples := t.Samples(sampleRate)
	if len(samples) == 0 {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer func() { _ = portaudio.Terminate() }()

	buf := make([]float32, framesPerBuf)
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(buf), buf)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer func() { _ = stream.Stop() }()

	for off := 0; off < len(samples); off += len(buf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := copy(buf, samples[off:])
		clear(buf[n:])
		if err := stream.Write(); err != nil {
			return err
		}
	}
	return nil
}
