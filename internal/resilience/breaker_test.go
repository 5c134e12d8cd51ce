package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBreakerInitialState(t *testing.T) {
	b := New(DefaultConfig())
	if b.State() != Closed {
		t.Errorf("initial state = %v, want Closed", b.State())
	}
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := New(Config{Threshold: 3, ResetTimeout: time.Hour, HalfOpenSuccesses: 2})

	for i := 0; i < 2; i++ {
		if b.Failure() {
			t.Fatalf("breaker opened after %d failures", i+1)
		}
	}
	if !b.Failure() {
		t.Error("Failure() should report open on the threshold failure")
	}
	if b.State() != Open {
		t.Errorf("state = %v, want Open", b.State())
	}
}

func TestBreakerRejectsWhenOpen(t *testing.T) {
	b := New(Config{Threshold: 1, ResetTimeout: time.Hour, HalfOpenSuccesses: 1})
	b.Failure()

	if err := b.Allow(); err != ErrOpen {
		t.Errorf("Allow() = %v, want ErrOpen", err)
	}
}

func TestBreakerTransitionsToHalfOpen(t *testing.T) {
	b := New(Config{Threshold: 1, ResetTimeout: time.Millisecond, HalfOpenSuccesses: 1})
	b.Failure()

	time.Sleep(5 * time.Millisecond)

	if err := b.Allow(); err != nil {
		t.Errorf("Allow() = %v, want nil", err)
	}
	if b.State() != HalfOpen {
		t.Errorf("state = %v, want HalfOpen", b.State())
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := New(Config{Threshold: 1, ResetTimeout: time.Millisecond, HalfOpenSuccesses: 3})
	b.Failure()

	time.Sleep(5 * time.Millisecond)
	_ = b.Allow()

	b.Failure()

	if b.State() != Open {
		t.Errorf("state = %v, want Open", b.State())
	}
}

func TestBreakerResetZeroesCount(t *testing.T) {
	b := New(StreakConfig("unknown-screen", 5))
	for i := 0; i < 5; i++ {
		b.Failure()
	}
	if b.State() != Open || b.Failures() != 5 {
		t.Fatalf("state/failures = %v/%d, want open/5", b.State(), b.Failures())
	}

	b.Reset()

	if b.State() != Closed {
		t.Errorf("state = %v, want Closed", b.State())
	}
	if b.Failures() != 0 {
		t.Errorf("Failures() = %d, want 0", b.Failures())
	}
}

func TestStreakBreakerStaysOpen(t *testing.T) {
	b := New(StreakConfig("unknown-screen", 1))
	b.Failure()
	time.Sleep(2 * time.Millisecond)

	if err := b.Allow(); err != ErrOpen {
		t.Errorf("Allow() = %v, want ErrOpen until Reset", err)
	}
}

func TestSuccessResetsFailures(t *testing.T) {
	b := New(Config{Threshold: 3, ResetTimeout: time.Hour, HalfOpenSuccesses: 1})

	b.Failure()
	b.Failure()
	b.Success()
	if b.Failures() != 0 {
		t.Errorf("Failures() after success = %d, want 0", b.Failures())
	}
	b.Failure()
	b.Failure()

	if b.State() != Closed {
		t.Errorf("state = %v, want Closed", b.State())
	}
}

func TestBreakerExecuteWithResult(t *testing.T) {
	b := New(Config{Threshold: 1, ResetTimeout: time.Hour, HalfOpenSuccesses: 1})

	result, err := ExecuteWithResult(b, func() (int, error) { return 42, nil })
	if err != nil || result != 42 {
		t.Errorf("ExecuteWithResult = (%d, %v), want (42, nil)", result, err)
	}

	boom := errors.New("boom")
	if _, err := ExecuteWithResult(b, func() (int, error) { return 0, boom }); err != boom {
		t.Errorf("ExecuteWithResult failure = %v, want %v", err, boom)
	}
	if _, err := ExecuteWithResult(b, func() (int, error) { return 1, nil }); err != ErrOpen {
		t.Errorf("ExecuteWithResult while open = %v, want ErrOpen", err)
	}
}

func TestRemoteBreakerRecovers(t *testing.T) {
	cfg := RemoteConfig()
	cfg.ResetTimeout = time.Millisecond
	b := New(cfg)

	for i := 0; i < RemoteThreshold; i++ {
		b.Failure()
	}
	if b.State() != Open {
		t.Fatalf("state = %v, want Open", b.State())
	}

	time.Sleep(5 * time.Millisecond)
	if err := b.Allow(); err != nil {
		t.Fatalf("Allow() after timeout = %v, want nil", err)
	}
	b.Success()

	if b.State() != Closed {
		t.Errorf("state = %v, want Closed after one half-open success", b.State())
	}
	if b.Failures() != 0 {
		t.Errorf("Failures() = %d, want 0", b.Failures())
	}
}

func TestBreakerConcurrentSafety(t *testing.T) {
	b := New(Config{Threshold: 100, ResetTimeout: time.Second, HalfOpenSuccesses: 10})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.Allow()
			if i%2 == 0 {
				b.Success()
			} else {
				b.Failure()
			}
			_ = b.Failures()
		}()
	}
	wg.Wait()

	_ = b.State()
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Closed, "closed"},
		{Open, "open"},
		{HalfOpen, "half-open"},
	}

	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()

	if cfg.Threshold != DefaultThreshold {
		t.Errorf("Threshold = %d, want %d", cfg.Threshold, DefaultThreshold)
	}
	if cfg.ResetTimeout != DefaultResetTimeout {
		t.Errorf("ResetTimeout = %v, want %v", cfg.ResetTimeout, DefaultResetTimeout)
	}
	if cfg.Name != "default" {
		t.Errorf("Name = %q, want default", cfg.Name)
	}
}
