package adb

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Not-Dhanraj/Star-Scout/internal/config"
	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
)

type fakeRunner struct {
	out   []byte
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.out, f.err
}

func (f *fakeRunner) last() string {
	if len(f.calls) == 0 {
		return ""
	}
	return strings.Join(f.calls[len(f.calls)-1], " ")
}

func TestScreencapArgs(t *testing.T) {
	tests := []struct {
		serial string
		want   string
	}{
		{"", "adb exec-out screencap -p"},
		{"emulator-5554", "adb -s emulator-5554 exec-out screencap -p"},
	}
	for _, tt := range tests {
		r := &fakeRunner{out: []byte(pngMagic + "rest")}
		c := New("", tt.serial).WithRunner(r)

		data, err := c.Screencap(context.Background())
		if err != nil {
			t.Fatalf("Screencap() error = %v", err)
		}
		if len(data) == 0 {
			t.Error("Screencap() returned no data")
		}
		if got := r.last(); got != tt.want {
			t.Errorf("command = %q, want %q", got, tt.want)
		}
	}
}

func TestScreencapRejectsNonPNG(t *testing.T) {
	c := New("adb", "").WithRunner(&fakeRunner{out: []byte("error: no devices/emulators found")})

	_, err := c.Screencap(context.Background())
	if !apperrors.IsCode(err, apperrors.CodeCaptureFailed) {
		t.Errorf("Screencap() error = %v, want CAPTURE_FAILED", err)
	}
}

func TestScreencapRunnerError(t *testing.T) {
	c := New("adb", "abc").WithRunner(&fakeRunner{err: errors.New("exit status 1")})

	_, err := c.Screencap(context.Background())
	if !apperrors.IsCode(err, apperrors.CodeCaptureFailed) {
		t.Errorf("Screencap() error = %v, want CAPTURE_FAILED", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Error("capture faults should be retryable")
	}
}

func TestTapArgs(t *testing.T) {
	r := &fakeRunner{}
	c := New("/opt/adb", "R58M").WithRunner(r)

	if err := c.Tap(context.Background(), 1182, 926); err != nil {
		t.Fatal(err)
	}
	if got, want := r.last(), "/opt/adb -s R58M shell input tap 1182 926"; got != want {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestTapError(t *testing.T) {
	c := New("adb", "").WithRunner(&fakeRunner{err: errors.New("device offline")})

	err := c.Tap(context.Background(), 1, 2)
	if !apperrors.IsCode(err, apperrors.CodeTransportFailed) {
		t.Errorf("Tap() error = %v, want TRANSPORT_FAILED", err)
	}
}

func TestDevices(t *testing.T) {
	out := "List of devices attached\nemulator-5554\tdevice\nR58M\tunauthorized\n0123abcd\tdevice\n\n"
	r := &fakeRunner{out: []byte(out)}
	c := New("adb", "ignored").WithRunner(r)

	got, err := c.Devices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "emulator-5554" || got[1] != "0123abcd" {
		t.Errorf("Devices() = %v", got)
	}
	if r.last() != "adb devices" {
		t.Errorf("devices should not be scoped to a serial, ran %q", r.last())
	}
}

func TestTapperWaitsSettle(t *testing.T) {
	r := &fakeRunner{}
	tp := NewTapper(New("adb", "").WithRunner(r), 20*time.Millisecond)

	start := time.Now()
	if err := tp.Tap(context.Background(), config.Point{X: 5, Y: 6}); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Tap returned after %v, want >= 20ms", elapsed)
	}
	if len(r.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(r.calls))
	}
}

func TestTapperSkipsSettleOnError(t *testing.T) {
	tp := NewTapper(New("adb", "").WithRunner(&fakeRunner{err: errors.New("x")}), time.Hour)

	if err := tp.Tap(context.Background(), config.Point{}); err == nil {
		t.Error("expected error")
	}
}
