package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/slovo/slovo/desktop/internal/agent"
	"github.com/slovo/slovo/desktop/internal/metrics"
)

// DefaultInterval is the time between two health polls.
const DefaultInterval = 10 * time.Second

// EventName is the name under which transitions are published to the UI.
const EventName = "agent-status-changed"

// State is the monitor's classification of agent reachability.
type State string

// Connectivity states. Disconnected is the initial state.
const (
	Connected    State = "connected"
	Degraded     State = "degraded"
	Disconnected State = "disconnected"
)

// Event describes one state transition. Previous always equals the Current
// of the event emitted before it, or Disconnected for the first event.
type Event struct {
	Previous State     `json:"previous"`
	Current  State     `json:"status"`
	At       time.Time `json:"at"`
}

// Sink receives transition events. Publish is called from the monitor
// goroutine in transition order and must not block for long.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Publish calls f(e).
func (f SinkFunc) Publish(e Event) { f(e) }

// HealthChecker is the single call the monitor makes per poll.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*agent.Health, error)
}

// Classify maps the outcome of one health query to a target state.
func Classify(h *agent.Health, err error, healthyStatus string) State {
	switch {
	case err != nil || h == nil:
		return Disconnected
	case h.Status == healthyStatus:
		return Connected
	default:
		return Degraded
	}
}

// Monitor polls agent health on a fixed interval and publishes an Event to
// every sink each time the classified state changes. The current state is
// owned by the goroutine running Run and is never exposed directly.
type Monitor struct {
	checker  HealthChecker
	interval time.Duration
	healthy  string
	sinks    []Sink
	logger   *slog.Logger
	now      func() time.Time
	metrics  *instruments

	last State
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the poll interval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithHealthyStatus sets the status token classified as Connected.
func WithHealthyStatus(s string) Option {
	return func(m *Monitor) {
		if s != "" {
			m.healthy = s
		}
	}
}

// WithSink adds a sink. Sinks receive events in the order they were added.
func WithSink(s Sink) Option {
	return func(m *Monitor) { m.sinks = append(m.sinks, s) }
}

// WithLogger sets the logger; slog.Default() otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) { m.logger = l }
}

// WithMetrics records poll outcomes and transitions in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(m *Monitor) { m.metrics = newInstruments(reg) }
}

// WithClock overrides time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New returns a Monitor in the Disconnected state.
func New(checker HealthChecker, opts ...Option) *Monitor {
	m := &Monitor{
		checker:  checker,
		interval: DefaultInterval,
		healthy:  agent.StatusHealthy,
		logger:   slog.Default(),
		now:      time.Now,
		last:     Disconnected,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.metrics.transition("", m.last)
	return m
}

// Run polls immediately and then once per interval until ctx is cancelled.
// Poll failures are folded into the state machine; Run never returns an
// error. Call Run exactly once per Monitor.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Info("monitor: started", "interval", m.interval, "initial", m.last)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor: stopped", "last", m.last)
			return
		case <-t.C:
			m.poll(ctx)
		}
	}
}

// poll runs one tick of the state machine and reports the event it emitted.
func (m *Monitor) poll(ctx context.Context) (Event, bool) {
	h, err := m.checker.HealthCheck(ctx)
	if ctx.Err() != nil {
		// Shutting down: a cancelled request says nothing about the agent.
		return Event{}, false
	}

	target := Classify(h, err, m.healthy)
	m.metrics.poll(target)
	if target == m.last {
		return Event{}, false
	}

	if target == Disconnected {
		m.logger.Warn("monitor: agent health check failed", "err", describe(h, err))
	}
	m.logger.Info("monitor: agent status changed", "from", m.last, "to", target)

	ev := Event{Previous: m.last, Current: target, At: m.now()}
	for _, s := range m.sinks {
		s.Publish(ev)
	}
	m.metrics.transition(m.last, target)
	m.last = target
	return ev, true
}

func describe(h *agent.Health, err error) string {
	if err != nil {
		return err.Error()
	}
	if h == nil {
		return "empty health response"
	}
	return ""
}
