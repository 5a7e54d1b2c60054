// Package metrics is the counter/gauge registry exposed at GET /metrics.
//
// Registry wraps a private prometheus.Registry from client_golang; counters
// and gauges are CounterVec/GaugeVec collectors addressed by label values.
// ServeHTTP delegates to promhttp, which negotiates the exposition format
// with the scraper. WriteText renders the same families through expfmt for
// tests and one-shot dumps.
package metrics
