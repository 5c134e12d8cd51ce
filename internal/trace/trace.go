// Package trace carries run and iteration identity through the loop so every
// log line of one iteration can be grouped, including lines emitted by a
// remote recognizer handling that iteration's frames.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Metadata keys for gRPC/HTTP propagation.
const (
	RunIDKey        = "x-scout-run-id"
	IterationKey    = "x-scout-iteration"
	SpanIDKey       = "x-scout-span-id"
	ParentSpanIDKey = "x-scout-parent-span-id"
)

type ctxKey struct{}

// Context identifies one span of work inside a run.
type Context struct {
	RunID        string
	Iteration    int
	SpanID       string
	ParentSpanID string
}

// NewRun starts a fresh run identity.
func NewRun() Context {
	return Context{RunID: uuid.NewString(), SpanID: newSpanID()}
}

// Child derives a new span under c.
func (c Context) Child() Context {
	return Context{
		RunID:        c.RunID,
		Iteration:    c.Iteration,
		SpanID:       newSpanID(),
		ParentSpanID: c.SpanID,
	}
}

func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

func WithContext(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// EnsureContext returns existing trace context or creates a new run.
func EnsureContext(ctx context.Context) (context.Context, Context) {
	if tc, ok := FromContext(ctx); ok {
		return ctx, tc
	}
	tc := NewRun()
	return WithContext(ctx, tc), tc
}

// WithIteration stamps the iteration number onto ctx's trace.
func WithIteration(ctx context.Context, n int) context.Context {
	ctx, tc := EnsureContext(ctx)
	tc = tc.Child()
	tc.Iteration = n
	return WithContext(ctx, tc)
}

func newSpanID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ToMap exports c for propagation.
func (c Context) ToMap() map[string]string {
	m := map[string]string{
		RunIDKey:     c.RunID,
		IterationKey: strconv.Itoa(c.Iteration),
		SpanIDKey:    c.SpanID,
	}
	if c.ParentSpanID != "" {
		m[ParentSpanIDKey] = c.ParentSpanID
	}
	return m
}

// FromMap rebuilds a context received from a peer. The peer's span becomes
// the parent of a new local span.
func FromMap(m map[string]string) Context {
	tc := Context{
		RunID:        m[RunIDKey],
		SpanID:       newSpanID(),
		ParentSpanID: m[SpanIDKey],
	}
	tc.Iteration, _ = strconv.Atoi(m[IterationKey])
	if tc.RunID == "" {
		tc.RunID = uuid.NewString()
	}
	return tc
}

func (c Context) logArgs() []any {
	args := []any{"run_id", c.RunID, "span_id", c.SpanID}
	if c.Iteration > 0 {
		args = append(args, "iteration", c.Iteration)
	}
	return args
}

// Span times one step of an iteration.
type Span struct {
	Name      string
	Ctx       Context
	StartTime time.Time
	EndTime   time.Time
	Attrs     map[string]any
}

// StartSpan begins a child span of whatever trace ctx carries.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ctx, parent := EnsureContext(ctx)
	tc := parent.Child()
	s := &Span{
		Name:      name,
		Ctx:       tc,
		StartTime: time.Now(),
		Attrs:     make(map[string]any),
	}
	return WithContext(ctx, tc), s
}

// End marks the span complete and logs it at debug level.
func (s *Span) End() {
	s.EndTime = time.Now()
	slog.Debug("span", "span", s)
}

func (s *Span) SetAttr(key string, val any) {
	s.Attrs[key] = val
}

func (s *Span) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// LogValue implements slog.LogValuer.
func (s *Span) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", s.Name),
		slog.String("run_id", s.Ctx.RunID),
		slog.String("span_id", s.Ctx.SpanID),
		slog.Duration("duration", s.Duration()),
	}
	if s.Ctx.Iteration > 0 {
		attrs = append(attrs, slog.Int("iteration", s.Ctx.Iteration))
	}
	for k, v := range s.Attrs {
		attrs = append(attrs, slog.Any(k, v))
	}
	return slog.GroupValue(attrs...)
}

// Logger returns the default logger annotated with ctx's trace.
func Logger(ctx context.Context) *slog.Logger {
	tc, ok := FromContext(ctx)
	if !ok {
		return slog.Default()
	}
	return slog.Default().With(tc.logArgs()...)
}
