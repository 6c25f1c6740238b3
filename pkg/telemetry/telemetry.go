// Package telemetry is a small prometheus facade: components declare
// counters and gauges by name and get back plain functions, keeping
// metric plumbing out of their signatures.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var defaultRegisterer = prometheus.DefaultRegisterer

// CounterFn increments a counter, accepting optional label values.
type CounterFn func(float64, ...string)

// GaugeFn sets a gauge value, accepting optional label values.
type GaugeFn func(float64, ...string)

// CommonOptions holds the common options for counters and gauges.
type CommonOptions struct {
	description string
	labels      []string
}

type Option func(*CommonOptions)

// WithDescription sets the help text for the metric.
func WithDescription(description string) Option {
	return func(o *CommonOptions) {
		o.description = description
	}
}

// WithLabels sets the label names for the metric.
func WithLabels(labels ...string) Option {
	return func(o *CommonOptions) {
		o.labels = labels
	}
}

// Counter registers a counter on the default registry and returns an
// increment function.
func Counter(name string, opts ...Option) CounterFn {
	options := apply(opts)

	metricOpts := prometheus.CounterOpts{
		Name: name + "_total",
		Help: "Counter for " + name,
	}
	if options.description != "" {
		metricOpts.Help = options.description
	}

	counter := promauto.With(defaultRegisterer).NewCounterVec(metricOpts, options.labels)
	return func(value float64, labels ...string) {
		counter.WithLabelValues(labels...).Add(value)
	}
}

// Gauge registers a gauge on the default registry and returns a set
// function.
func Gauge(name string, opts ...Option) GaugeFn {
	options := apply(opts)

	metricOpts := prometheus.GaugeOpts{
		Name: name,
		Help: "Gauge for " + name,
	}
	if options.description != "" {
		metricOpts.Help = options.description
	}

	gauge := promauto.With(defaultRegisterer).NewGaugeVec(metricOpts, options.labels)
	return func(value float64, labels ...string) {
		gauge.WithLabelValues(labels...).Set(value)
	}
}

// ObservableGauge registers a gauge whose value is read from fn at
// scrape time.
func ObservableGauge(name string, fn func() float64, opts ...Option) {
	options := apply(opts)

	metricOpts := prometheus.GaugeOpts{
		Name: name,
		Help: "Gauge for " + name,
	}
	if options.description != "" {
		metricOpts.Help = options.description
	}

	promauto.With(defaultRegisterer).NewGaugeFunc(metricOpts, fn)
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func apply(opts []Option) *CommonOptions {
	options := &CommonOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
