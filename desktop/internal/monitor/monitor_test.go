package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/slovo/slovo/desktop/internal/agent"
	"github.com/slovo/slovo/desktop/internal/metrics"
)

// --- helpers ----------------------------------------------------------------

type outcome struct {
	h   *agent.Health
	err error
}

func healthy() outcome  { return outcome{h: &agent.Health{Status: "healthy", Version: "1.0", Uptime: 5}} }
func degraded() outcome { return outcome{h: &agent.Health{Status: "degraded", Version: "1.0", Uptime: 5}} }
func failed() outcome   { return outcome{err: errors.New("connection refused")} }

// scriptedChecker returns outcomes in order; the last one repeats.
type scriptedChecker struct {
	mu    sync.Mutex
	out   []outcome
	calls int
}

func (s *scriptedChecker) HealthCheck(context.Context) (*agent.Health, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	o := s.out[0]
	if len(s.out) > 1 {
		s.out = s.out[1:]
	}
	return o.h, o.err
}

func (s *scriptedChecker) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recorder is a Sink that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// runPolls drives n ticks of the state machine directly.
func runPolls(m *Monitor, n int) {
	for i := 0; i < n; i++ {
		m.poll(context.Background())
	}
}

func transitions(evs []Event) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = string(e.Previous) + "->" + string(e.Current)
	}
	return out
}

func assertTransitions(t *testing.T, got []Event, want ...string) {
	t.Helper()
	g := transitions(got)
	if strings.Join(g, ",") != strings.Join(want, ",") {
		t.Errorf("transitions: got %v, want %v", g, want)
	}
}

// --- Classify ---------------------------------------------------------------

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		o    outcome
		want State
	}{
		{"healthy token", healthy(), Connected},
		{"other token", degraded(), Degraded},
		{"empty token", outcome{h: &agent.Health{}}, Degraded},
		{"error", failed(), Disconnected},
		{"nil health", outcome{}, Disconnected},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.o.h, tc.o.err, agent.StatusHealthy); got != tc.want {
				t.Errorf("Classify: got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassify_CustomHealthyToken(t *testing.T) {
	h := &agent.Health{Status: "ok"}
	if got := Classify(h, nil, "ok"); got != Connected {
		t.Errorf("got %q, want connected", got)
	}
	if got := Classify(h, nil, "healthy"); got != Degraded {
		t.Errorf("got %q, want degraded", got)
	}
}

// --- state machine ----------------------------------------------------------

func TestMonitor_HealthyThreeTimes_OneEvent(t *testing.T) {
	rec := &recorder{}
	m := New(&scriptedChecker{out: []outcome{healthy(), healthy(), healthy()}},
		WithSink(rec), WithLogger(quietLogger()))

	runPolls(m, 3)
	assertTransitions(t, rec.Events(), "disconnected->connected")
}

func TestMonitor_DegradedThenHealthy_TwoEvents(t *testing.T) {
	rec := &recorder{}
	m := New(&scriptedChecker{out: []outcome{degraded(), healthy()}},
		WithSink(rec), WithLogger(quietLogger()))

	runPolls(m, 4)
	assertTransitions(t, rec.Events(), "disconnected->degraded", "degraded->connected")
}

func TestMonitor_InitialDisconnectedIsNotAnnounced(t *testing.T) {
	rec := &recorder{}
	m := New(&scriptedChecker{out: []outcome{failed()}},
		WithSink(rec), WithLogger(quietLogger()))

	runPolls(m, 5)
	if n := len(rec.Events()); n != 0 {
		t.Errorf("events while still disconnected: got %d, want 0", n)
	}
}

func TestMonitor_FlappingEmitsEveryChange(t *testing.T) {
	rec := &recorder{}
	m := New(&scriptedChecker{out: []outcome{
		healthy(), failed(), failed(), healthy(), degraded(), degraded(), failed(),
	}}, WithSink(rec), WithLogger(quietLogger()))

	runPolls(m, 7)
	assertTransitions(t, rec.Events(),
		"disconnected->connected",
		"connected->disconnected",
		"disconnected->connected",
		"connected->degraded",
		"degraded->disconnected",
	)
}

func TestMonitor_RandomSequence_EventChainInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	gens := []func() outcome{healthy, degraded, failed}

	var script []outcome
	for i := 0; i < 500; i++ {
		script = append(script, gens[rng.Intn(len(gens))]())
	}
	// Expected transitions computed independently of the monitor.
	var want []string
	prev := Disconnected
	for _, o := range script {
		cur := Classify(o.h, o.err, agent.StatusHealthy)
		if cur != prev {
			want = append(want, string(prev)+"->"+string(cur))
			prev = cur
		}
	}

	rec := &recorder{}
	m := New(&scriptedChecker{out: script}, WithSink(rec), WithLogger(quietLogger()))
	runPolls(m, len(script))

	evs := rec.Events()
	assertTransitions(t, evs, want...)

	last := Disconnected
	for i, e := range evs {
		if e.Previous != last {
			t.Fatalf("event %d: previous %q does not chain from %q", i, e.Previous, last)
		}
		if e.Previous == e.Current {
			t.Fatalf("event %d: no-op transition %q", i, e.Current)
		}
		last = e.Current
	}
}

func TestMonitor_SinksReceiveInRegistrationOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	sink := func(name string) Sink {
		return SinkFunc(func(Event) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}
	m := New(&scriptedChecker{out: []outcome{healthy()}},
		WithSink(sink("ws")), WithSink(sink("grpc")), WithLogger(quietLogger()))

	runPolls(m, 1)
	if strings.Join(order, ",") != "ws,grpc" {
		t.Errorf("sink order: got %v", order)
	}
}

func TestMonitor_EventTimestampFromClock(t *testing.T) {
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	rec := &recorder{}
	m := New(&scriptedChecker{out: []outcome{healthy()}},
		WithSink(rec), WithClock(func() time.Time { return at }), WithLogger(quietLogger()))

	runPolls(m, 1)
	evs := rec.Events()
	if len(evs) != 1 || !evs[0].At.Equal(at) {
		t.Errorf("events: got %+v", evs)
	}
}

func TestEvent_JSONCarriesStateToken(t *testing.T) {
	data, err := json.Marshal(Event{Previous: Disconnected, Current: Connected})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if m["status"] != "connected" || m["previous"] != "disconnected" {
		t.Errorf("json: got %s", data)
	}
}

// --- logging ----------------------------------------------------------------

func countLevel(t *testing.T, buf *bytes.Buffer, level string) int {
	t.Helper()
	n := 0
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if rec["level"] == level {
			n++
		}
	}
	return n
}

func TestMonitor_WarnsOncePerTransitionIntoDisconnected(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	m := New(&scriptedChecker{out: []outcome{
		healthy(), failed(), failed(), failed(), healthy(), failed(), failed(),
	}}, WithLogger(logger))

	runPolls(m, 7)
	if n := countLevel(t, &buf, "WARN"); n != 2 {
		t.Errorf("warnings: got %d, want 2 (one per transition into disconnected)\n%s", n, buf.String())
	}
}

func TestMonitor_NoWarningWhileInitiallyDisconnected(t *testing.T) {
	var buf bytes.Buffer
	m := New(&scriptedChecker{out: []outcome{failed()}}, WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	runPolls(m, 4)
	if n := countLevel(t, &buf, "WARN"); n != 0 {
		t.Errorf("warnings: got %d, want 0", n)
	}
}

// --- metrics ----------------------------------------------------------------

func TestMonitor_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	m := New(&scriptedChecker{out: []outcome{healthy(), healthy(), failed()}},
		WithMetrics(reg), WithLogger(quietLogger()))
	runPolls(m, 3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	values := map[string]float64{}
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range metric.GetLabel() {
				key += "," + l.GetValue()
			}
			values[key] = metric.GetCounter().GetValue() + metric.GetGauge().GetValue()
		}
	}

	checks := map[string]float64{
		"slovo_agent_health_polls_total,connected":                   2,
		"slovo_agent_health_polls_total,disconnected":                1,
		"slovo_agent_state_transitions_total,disconnected,connected": 1,
		"slovo_agent_state_transitions_total,connected,disconnected": 1,
		"slovo_agent_connectivity_state,disconnected":                1,
		"slovo_agent_connectivity_state,connected":                   0,
	}
	for k, want := range checks {
		if got := values[k]; got != want {
			t.Errorf("%s: got %v, want %v", k, got, want)
		}
	}
}

// --- Run --------------------------------------------------------------------

func TestRun_PollsImmediatelyAndOnInterval(t *testing.T) {
	defer goleak.VerifyNone(t)

	checker := &scriptedChecker{out: []outcome{degraded(), healthy()}}
	events := make(chan Event, 8)
	m := New(checker,
		WithInterval(10*time.Millisecond),
		WithSink(SinkFunc(func(e Event) { events <- e })),
		WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	var got []Event
	for len(got) < 2 {
		select {
		case e := <-events:
			got = append(got, e)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", transitions(got))
		}
	}
	assertTransitions(t, got, "disconnected->degraded", "degraded->connected")

	// Steady state: more polls, no more events.
	deadline := time.Now().Add(2 * time.Second)
	for checker.Calls() < 6 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case e := <-events:
		t.Errorf("unexpected event in steady state: %+v", e)
	default:
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// blockingChecker blocks until its context is cancelled.
type blockingChecker struct{}

func (blockingChecker) HealthCheck(ctx context.Context) (*agent.Health, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRun_CancelDuringPollEmitsNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recorder{}
	m := New(blockingChecker{}, WithSink(rec), WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if n := len(rec.Events()); n != 0 {
		t.Errorf("events: got %d, want 0", n)
	}
}
