// Package orchestrator runs the scout's decision loop: detect the screen,
// act on it, and stop once a target card shows up.
package orchestrator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Not-Dhanraj/Star-Scout/internal/config"
	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
	"github.com/Not-Dhanraj/Star-Scout/internal/match"
	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/history"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/screen"
	"github.com/Not-Dhanraj/Star-Scout/internal/resilience"
	screencap "github.com/Not-Dhanraj/Star-Scout/internal/screen"
	"github.com/Not-Dhanraj/Star-Scout/internal/syncx"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// Deps are the collaborators of the loop.
type Deps struct {
	Capturer   screencap.Capturer
	Recognizer ocr.Recognizer
	Actor      Actor
	Notifier   Notifier
	Extractor  AttributeReader
	Matcher    TemplateMatcher
	Assets     match.Assets
	Sink       screen.ImageSink // optional, receives UNKNOWN frames
	Rand       *rand.Rand       // tile choice; seeded from the clock when nil
}

// Manager drives the loop. It is not safe for concurrent Step calls; Status,
// Recent and Events may be read from other goroutines.
type Manager struct {
	cfg      *config.Config
	deps     Deps
	detector *screen.Detector
	unknown  *resilience.Breaker
	history  *history.Store
	status   *syncx.RWGuard[Status]
	region   match.Region

	iteration int
}

func New(cfg *config.Config, deps Deps) *Manager {
	if deps.Rand == nil {
		now := uint64(time.Now().UnixNano())
		deps.Rand = rand.New(rand.NewPCG(now, now>>1))
	}
	detector := screen.NewDetector(deps.Capturer, deps.Recognizer, screen.NewClassifier(), cfg.RetryAttempts, cfg.Delays.Retry)
	if deps.Sink != nil {
		detector.WithSink(deps.Sink)
	}

	return &Manager{
		cfg:      cfg,
		deps:     deps,
		detector: detector,
		unknown:  resilience.New(resilience.StreakConfig("unknown-screen", cfg.UnknownLimit)),
		history:  history.NewStore(HistoryMaxEntries, HistoryEventBuffer),
		status:   syncx.NewGuard(Status{StartedAt: time.Now()}),
		region:   match.Region(cfg.CheckRegion),
	}
}

// Status returns a snapshot of the loop.
func (m *Manager) Status() Status { return m.status.Get() }

// Events streams history events. Events are dropped when the reader lags.
func (m *Manager) Events() <-chan history.Event { return m.history.Events() }

// Recent returns up to n newest history events.
func (m *Manager) Recent(n int) []history.Event { return m.history.Recent(n) }

// Since returns the retained events recorded at or after t.
func (m *Manager) Since(t time.Time) []history.Event { return m.history.Since(t) }

// Counts returns lifetime event totals per kind.
func (m *Manager) Counts() map[history.Kind]int { return m.history.Counts() }

// Run steps until a target is found or ctx is cancelled. Cancellation is
// only observed between iterations. Faults inside an iteration are logged
// and the loop carries on after the error delay.
func (m *Manager) Run(ctx context.Context) (Result, error) {
	ctx, tc := trace.EnsureContext(ctx)
	started := time.Now()
	m.status.Write(func(s *Status) {
		s.RunID = tc.RunID
		s.StartedAt = started
	})

	log := trace.Logger(ctx)
	log.Info("scout started", "target_min", m.cfg.TargetMin, "target_max", m.cfg.TargetMax, "assets", len(m.deps.Assets))

	for {
		if err := ctx.Err(); err != nil {
			res := m.finish(ReasonCancelled, Continue, started)
			log.Info("scout stopped", "iterations", res.Iterations, "elapsed", res.Elapsed)
			return res, err
		}

		outcome, err := m.safeStep(ctx)
		if err != nil {
			trace.Logger(trace.WithIteration(ctx, m.iteration)).Error("iteration failed", "error", err)
			m.record(history.Event{Kind: history.KindFault, Detail: err.Error()})
			_ = pause(ctx, m.cfg.Delays.Error)
			continue
		}

		switch outcome {
		case FoundTarget:
			return m.finish(ReasonTarget, outcome, started), nil
		case FoundSpecial:
			return m.finish(ReasonSpecial, outcome, started), nil
		}
	}
}

func (m *Manager) safeStep(ctx context.Context) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = Continue, apperrors.Newf(apperrors.CodeInternal, "iteration panicked: %v", r)
		}
	}()
	return m.Step(ctx)
}

func (m *Manager) finish(reason string, outcome Outcome, started time.Time) Result {
	var res Result
	m.status.Write(func(s *Status) {
		s.Done = true
		s.Reason = reason
		res = Result{
			Outcome:    outcome,
			Reason:     reason,
			Iterations: s.Iteration,
			Elapsed:    time.Since(started),
		}
		if outcome == FoundTarget {
			res.Attribute = s.LastAttribute
		}
		if outcome == FoundSpecial {
			res.Asset = s.LastAsset
			res.Confidence = s.LastConfidence
		}
	})
	return res
}

// Step runs one iteration to completion. ctx cancellation does not interrupt
// a step once it has begun, so no tap sequence is left half done.
func (m *Manager) Step(ctx context.Context) (Outcome, error) {
	m.iteration++
	n := m.iteration
	ctx = trace.WithIteration(context.WithoutCancel(ctx), n)
	log := trace.Logger(ctx)
	m.status.Write(func(s *Status) { s.Iteration = n })

	det, err := m.detector.Detect(ctx)
	if err != nil {
		return Continue, err
	}
	log.Info("screen detected", "state", det.State, "attempts", det.Attempts)
	m.record(history.Event{Kind: history.KindState, State: string(det.State)})

	if det.State == screen.StateUnknown {
		m.onUnknown(ctx)
		return Continue, nil
	}
	m.unknown.Success()
	m.status.Write(func(s *Status) {
		s.State = string(det.State)
		s.ConsecutiveUnknown = 0
	})

	acts := m.cfg.Actions
	switch det.State {
	case screen.StateMain:
		return Continue, m.act(ctx, "free reveal", acts.FreeReveal)
	case screen.StateConfirm, screen.StateRefreshConfirm:
		return Continue, m.act(ctx, "yes", acts.Yes)
	case screen.StateTileSelect:
		i := m.deps.Rand.IntN(len(acts.Tiles))
		return Continue, m.act(ctx, fmt.Sprintf("tile %d", i+1), acts.Tiles[i])
	case screen.StateSkip:
		return Continue, m.act(ctx, "skip", acts.Skip)
	case screen.StateResult:
		return m.handleResult(ctx)
	}
	return Continue, nil
}

func (m *Manager) onUnknown(ctx context.Context) {
	opened := m.unknown.Failure()
	streak := m.unknown.Failures()
	m.status.Write(func(s *Status) {
		s.State = string(screen.StateUnknown)
		s.ConsecutiveUnknown = streak
	})
	if !opened {
		return
	}

	trace.Logger(ctx).Warn("too many unknown screens, backing off", "streak", streak, "pause", m.cfg.Delays.Backoff)
	m.record(history.Event{Kind: history.KindBackoff, Detail: fmt.Sprintf("%d unknown screens", streak)})
	_ = pause(ctx, m.cfg.Delays.Backoff)
	m.unknown.Reset()
	m.status.Write(func(s *Status) { s.ConsecutiveUnknown = 0 })
}

// act taps p and waits for the screen to react.
func (m *Manager) act(ctx context.Context, name string, p config.Point) error {
	trace.Logger(ctx).Info("tap", "action", name, "x", p.X, "y", p.Y)
	m.record(history.Event{Kind: history.KindAction, Detail: name})
	if err := m.deps.Actor.Tap(ctx, p); err != nil {
		return err
	}
	return pause(ctx, m.cfg.Delays.Action)
}

func (m *Manager) record(e history.Event) {
	if e.Iteration == 0 {
		e.Iteration = m.iteration
	}
	m.history.Add(e)
}

func (m *Manager) notify(ctx context.Context) {
	if m.deps.Notifier == nil {
		return
	}
	if err := m.deps.Notifier.Notify(ctx); err != nil {
		trace.Logger(ctx).Warn("alert failed", "error", err)
	}
}

func pause(ctx context.Context, d time.Duration) error {
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
