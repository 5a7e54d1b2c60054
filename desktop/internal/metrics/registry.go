package metrics

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the process's counters and gauges. It wraps a private
// prometheus.Registry so nothing leaks in from the global default one.
// All methods are safe for concurrent use.
type Registry struct {
	reg     *prometheus.Registry
	handler http.Handler
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	return &Registry{
		reg:     reg,
		handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
}

// Counter is a monotonically increasing metric, optionally labelled.
type Counter struct {
	vec *prometheus.CounterVec
}

// Gauge is a metric that can be set to any value, optionally labelled.
type Gauge struct {
	vec *prometheus.GaugeVec
}

// NewCounter registers (or returns the already registered) counter name.
// It panics if name is already registered with a different shape.
func (r *Registry) NewCounter(name, help string, labelNames ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelNames)
	existing, ok := register(r.reg, name, vec).(*prometheus.CounterVec)
	if !ok {
		panic(fmt.Sprintf("metrics: %q re-registered with a different shape", name))
	}
	return &Counter{vec: existing}
}

// NewGauge registers (or returns the already registered) gauge name.
// It panics if name is already registered with a different shape.
func (r *Registry) NewGauge(name, help string, labelNames ...string) *Gauge {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labelNames)
	existing, ok := register(r.reg, name, vec).(*prometheus.GaugeVec)
	if !ok {
		panic(fmt.Sprintf("metrics: %q re-registered with a different shape", name))
	}
	return &Gauge{vec: existing}
}

// register returns c, or the collector already registered under the same
// descriptor.
func register(reg *prometheus.Registry, name string, c prometheus.Collector) prometheus.Collector {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return are.ExistingCollector
	}
	panic(fmt.Sprintf("metrics: register %q: %v", name, err))
}

// Inc adds 1 to the series identified by labelValues.
func (c *Counter) Inc(labelValues ...string) { c.vec.WithLabelValues(labelValues...).Inc() }

// Add adds v (which must be non-negative) to the series.
func (c *Counter) Add(v float64, labelValues ...string) {
	c.vec.WithLabelValues(labelValues...).Add(v)
}

// Set sets the series identified by labelValues to v.
func (g *Gauge) Set(v float64, labelValues ...string) {
	g.vec.WithLabelValues(labelValues...).Set(v)
}

// Gather returns every family with at least one series, sorted by name.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	mfs, err := r.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("metrics: gather: %w", err)
	}
	return mfs, nil
}

// WriteText writes all families in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	mfs, err := r.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ServeHTTP serves GET /metrics through promhttp.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.handler.ServeHTTP(w, req)
}
