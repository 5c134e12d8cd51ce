package screen

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	screencap "github.com/Not-Dhanraj/Star-Scout/internal/screen"
)

type mockCapturer struct {
	errs  []error
	calls int
}

func (m *mockCapturer) Capture(context.Context) (*screencap.Frame, error) {
	m.calls++
	if i := m.calls - 1; i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	return &screencap.Frame{Image: imaging.New(4, 4, color.White), CapturedAt: time.UnixMilli(int64(m.calls))}, nil
}

func (m *mockCapturer) Close() {}

// scriptedOCR answers block passes from a script, one entry per frame.
type scriptedOCR struct {
	script []string
	block  int
}

func (s *scriptedOCR) Recognize(_ context.Context, _ image.Image, mode ocr.Mode) (string, error) {
	if mode != ocr.ModeBlock {
		return "", nil
	}
	s.block++
	if i := s.block - 1; i < len(s.script) {
		return s.script[i], nil
	}
	return "", nil
}

type memorySink struct {
	mu    sync.Mutex
	names []string
}

func (m *memorySink) SaveImage(name string, _ image.Image) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, name)
	return "/tmp/" + name, nil
}

func TestDetectFirstAttempt(t *testing.T) {
	cp := &mockCapturer{}
	d := NewDetector(cp, &scriptedOCR{script: []string{"star scout free reveal"}}, NewClassifier(), 3, 0)

	det, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if det.State != StateMain || det.Attempts != 1 {
		t.Errorf("Detect() = %s after %d attempts, want MAIN after 1", det.State, det.Attempts)
	}
	if det.Frame == nil || det.Text == "" {
		t.Error("detection should carry frame and text")
	}
}

func TestDetectRetriesUnknown(t *testing.T) {
	cp := &mockCapturer{}
	d := NewDetector(cp, &scriptedOCR{script: []string{"", "???", "swipe to reveal"}}, NewClassifier(), 3, time.Millisecond)

	det, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if det.State != StateSkip || det.Attempts != 3 {
		t.Errorf("Detect() = %s after %d attempts, want SKIP after 3", det.State, det.Attempts)
	}
	if cp.calls != 3 {
		t.Errorf("captures = %d, want 3", cp.calls)
	}
}

func TestDetectGivesUpAsUnknown(t *testing.T) {
	cp := &mockCapturer{}
	sink := &memorySink{}
	d := NewDetector(cp, &scriptedOCR{}, NewClassifier(), 3, 0).WithSink(sink)

	det, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("exhausted retries should not be an error: %v", err)
	}
	if det.State != StateUnknown {
		t.Errorf("Detect() = %s, want UNKNOWN", det.State)
	}
	if cp.calls != 3 {
		t.Errorf("captures = %d, want 3", cp.calls)
	}
	if len(sink.names) != 1 {
		t.Errorf("saved %d unknown frames, want 1", len(sink.names))
	}
}

func TestDetectCaptureFaultIsRetried(t *testing.T) {
	fault := apperrors.New(apperrors.CodeCaptureFailed, "adb screencap")
	cp := &mockCapturer{errs: []error{fault, fault}}
	d := NewDetector(cp, &scriptedOCR{script: []string{"reveal clue"}}, NewClassifier(), 3, 0)

	det, err := d.Detect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if det.State != StateConfirm {
		t.Errorf("Detect() = %s, want CONFIRM", det.State)
	}
}

func TestDetectCaptureFaultsExhausted(t *testing.T) {
	fault := apperrors.New(apperrors.CodeCaptureFailed, "adb screencap")
	cp := &mockCapturer{errs: []error{fault, fault, fault}}
	d := NewDetector(cp, &scriptedOCR{}, NewClassifier(), 3, 0)

	det, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("capture faults should degrade to UNKNOWN, got %v", err)
	}
	if det.State != StateUnknown || det.Frame != nil {
		t.Errorf("Detect() = %+v, want UNKNOWN without frame", det)
	}
}

func TestDetectOnce(t *testing.T) {
	cp := &mockCapturer{}
	d := NewDetector(cp, &scriptedOCR{}, NewClassifier(), 3, 0)

	det, err := d.DetectOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if det.State != StateUnknown || cp.calls != 1 {
		t.Errorf("DetectOnce() = %s with %d captures, want UNKNOWN with 1", det.State, cp.calls)
	}
}

func TestDetectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDetector(&mockCapturer{}, &scriptedOCR{}, NewClassifier(), 3, 0)

	if _, err := d.Detect(ctx); err != context.Canceled {
		t.Errorf("Detect() error = %v, want context.Canceled", err)
	}
}
