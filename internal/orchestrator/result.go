package orchestrator

import (
	"context"
	"fmt"

	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/history"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/screen"
	screencap "github.com/Not-Dhanraj/Star-Scout/internal/screen"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// handleResult inspects a revealed card. A rating inside the target range
// ends the run; otherwise the card is dismissed, checked for a special badge
// and refreshed.
func (m *Manager) handleResult(ctx context.Context) (Outcome, error) {
	log := trace.Logger(ctx)
	if err := pause(ctx, m.cfg.Delays.OCR); err != nil {
		return Continue, err
	}

	frame, err := screencap.CaptureSettled(ctx, m.deps.Capturer, screencap.SettleOptions{
		MaxCaptures: m.cfg.SettleCaptures,
		MaxDistance: m.cfg.SettleHashDistance,
		Interval:    m.cfg.Delays.Capture,
	})
	if err != nil {
		return Continue, err
	}

	card := m.detector.Observe(ctx, frame)
	if !screen.HasAttributeMarker(card.Text) {
		log.Info("attribute not shown")
		return m.dismissAndCheck(ctx)
	}

	value, ok := m.deps.Extractor.Extract(ctx, frame.Image)
	if !ok {
		log.Info("attribute unreadable")
		m.record(history.Event{Kind: history.KindAttribute, Detail: "unreadable"})
		return m.dismissAndCheck(ctx)
	}

	log.Info("attribute read", "value", value)
	m.record(history.Event{Kind: history.KindAttribute, Detail: fmt.Sprint(value)})
	m.status.Write(func(s *Status) { s.LastAttribute = value })

	if value >= m.cfg.TargetMin && value <= m.cfg.TargetMax {
		log.Info("target found", "value", value)
		m.record(history.Event{Kind: history.KindSuccess, Detail: fmt.Sprintf("attribute %d", value)})
		m.notify(ctx)
		return FoundTarget, nil
	}
	log.Info("attribute outside target", "value", value, "min", m.cfg.TargetMin, "max", m.cfg.TargetMax)
	return m.dismissAndCheck(ctx)
}

// dismissAndCheck closes the card, looks for a special badge on the screen
// behind it and, failing that, asks for a fresh player.
func (m *Manager) dismissAndCheck(ctx context.Context) (Outcome, error) {
	log := trace.Logger(ctx)
	acts := m.cfg.Actions
	if err := m.act(ctx, "dismiss", acts.Dismiss); err != nil {
		return Continue, err
	}

	frame, err := m.deps.Capturer.Capture(ctx)
	if err != nil {
		return Continue, err
	}

	_, span := trace.StartSpan(ctx, "match")
	res := m.deps.Matcher.Match(frame.Image, m.deps.Assets, m.region)
	span.SetAttr("confidence", res.Confidence)
	span.End()

	m.status.Write(func(s *Status) { s.LastConfidence = res.Confidence })
	m.record(history.Event{Kind: history.KindMatch, Detail: fmt.Sprintf("%s %.2f", res.Name, res.Confidence)})
	if res.Found {
		log.Info("special card found", "asset", res.Name, "confidence", res.Confidence)
		m.status.Write(func(s *Status) { s.LastAsset = res.Name })
		m.record(history.Event{Kind: history.KindSuccess, Detail: "asset " + res.Name})
		m.notify(ctx)
		return FoundSpecial, nil
	}

	if err := m.act(ctx, "refresh", acts.Refresh); err != nil {
		return Continue, err
	}
	det, err := m.detector.DetectOnce(ctx)
	if err != nil {
		return Continue, err
	}
	if det.State == screen.StateRefreshConfirm {
		return Continue, m.act(ctx, "confirm refresh", acts.Yes)
	}
	return Continue, nil
}
