// Package alert makes a noise when the scout finds what it was looking for.
package alert

import (
	"context"
	"log/slog"
	"os"
	"os/exec"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

// Player plays a sound file through the first available external player,
// falling back to a generated tone.
type Player struct {
	sound string
	tone  Tone

	lookPath func(string) (string, error)
	start    func(name string, args ...string) error
	playTone func(ctx context.Context, t Tone) error
}

func NewPlayer(sound string, frequency float64, beeps int) *Player {
	if frequency <= 0 {
		frequency = DefaultFrequency
	}
	if beeps <= 0 {
		beeps = DefaultBeeps
	}
	return &Player{
		sound:    sound,
		tone:     Tone{Frequency: frequency, Beeps: beeps, Beep: beepLength, Gap: beepGap},
		lookPath: exec.LookPath,
		start:    startDetached,
		playTone: func(ctx context.Context, t Tone) error { return t.play(ctx) },
	}
}

// Notify starts playback. A sound file plays in the background; the tone
// fallback blocks until it has been written out.
func (p *Player) Notify(ctx context.Context) error {
	if p.sound != "" {
		if _, err := os.Stat(p.sound); err != nil {
			slog.Warn("alert sound not found", "path", p.sound)
		} else if err := p.playFile(); err == nil {
			return nil
		} else {
			slog.Warn("alert sound not played", "path", p.sound, "error", err)
		}
	}
	if err := p.playTone(ctx, p.tone); err != nil {
		return apperrors.Wrap(err, apperrors.CodeUnavailable, "play alert tone")
	}
	return nil
}

func (p *Player) playFile() error {
	for _, pl := range players {
		path, err := p.lookPath(pl.bin)
		if err != nil {
			continue
		}
		args := append(append([]string(nil), pl.args...), p.sound)
		if err := p.start(path, args...); err != nil {
			slog.Debug("player failed to start", "player", pl.bin, "error", err)
			continue
		}
		slog.Debug("alert playing", "player", pl.bin, "sound", p.sound)
		return nil
	}
	return apperrors.New(apperrors.CodeUnavailable, "no audio player found")
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
