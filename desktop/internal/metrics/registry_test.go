package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// parse decodes text exposition output the same way a scraper would.
func parse(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse exposition: %v\n%s", err, text)
	}
	return mfs
}

func TestRegistry_CounterAndGauge(t *testing.T) {
	r := NewRegistry()
	polls := r.NewCounter("slovo_test_polls_total", "Polls.", "result")
	state := r.NewGauge("slovo_test_state", "State.", "state")

	polls.Inc("ok")
	polls.Inc("ok")
	polls.Add(3, "failed")
	state.Set(1, "connected")
	state.Set(0, "disconnected")

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	mfs := parse(t, buf.String())

	pf := mfs["slovo_test_polls_total"]
	if pf == nil || pf.GetType() != dto.MetricType_COUNTER {
		t.Fatalf("polls family missing or wrong type: %v", pf)
	}
	got := map[string]float64{}
	for _, m := range pf.GetMetric() {
		got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	if got["ok"] != 2 || got["failed"] != 3 {
		t.Errorf("polls: got %v", got)
	}

	sf := mfs["slovo_test_state"]
	if sf == nil || sf.GetType() != dto.MetricType_GAUGE {
		t.Fatalf("state family missing or wrong type: %v", sf)
	}
	if n := len(sf.GetMetric()); n != 2 {
		t.Errorf("state series: got %d, want 2", n)
	}
}

func TestRegistry_EmptyFamiliesOmitted(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("slovo_unused_total", "Never incremented.")

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestRegistry_ReRegisterReturnsSameFamily(t *testing.T) {
	r := NewRegistry()
	a := r.NewCounter("slovo_shared_total", "Shared.", "k")
	b := r.NewCounter("slovo_shared_total", "Shared.", "k")
	a.Inc("x")
	b.Inc("x")

	mfs, err := r.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(mfs) != 1 {
		t.Fatalf("families: got %d, want 1", len(mfs))
	}
	if v := mfs[0].GetMetric()[0].GetCounter().GetValue(); v != 2 {
		t.Errorf("value: got %v, want 2", v)
	}
}

func TestRegistry_ShapeMismatchPanics(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("slovo_shape_total", "x")
	defer func() {
		if recover() == nil {
			t.Error("expected panic on gauge re-registration of a counter")
		}
	}()
	r.NewGauge("slovo_shape_total", "x")
}

func TestRegistry_LabelMismatchPanics(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("slovo_labels_total", "x", "a")
	defer func() {
		if recover() == nil {
			t.Error("expected panic on re-registration with other label names")
		}
	}()
	r.NewCounter("slovo_labels_total", "x", "a", "b")
}

func TestRegistry_IsolatedFromDefaultRegistry(t *testing.T) {
	r := NewRegistry()
	r.NewCounter("slovo_isolated_total", "x").Inc()

	mfs, err := r.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(mfs) != 1 || mfs[0].GetName() != "slovo_isolated_total" {
		t.Errorf("families: got %v, want only slovo_isolated_total", mfs)
	}
}

func TestRegistry_ServeHTTP(t *testing.T) {
	r := NewRegistry()
	r.NewGauge("slovo_up", "Up.").Set(1)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content-type: got %q", ct)
	}
	if mfs := parse(t, rr.Body.String()); mfs["slovo_up"] == nil {
		t.Error("slovo_up missing from output")
	}

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status: got %d, want 405", rr.Code)
	}
}
