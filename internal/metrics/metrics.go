// SPDX-License-Identifier: Apache-2.0

// Package metrics records classification outcomes in Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/appinsight/insightviz/internal/analytics"
)

// Recorder implements analytics.Observer.
type Recorder struct {
	registry    *prometheus.Registry
	classified  *prometheus.CounterVec
	failed      *prometheus.CounterVec
	passThrough *prometheus.CounterVec
}

// NewRecorder registers the insightviz collectors on a private registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		classified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insightviz",
			Name:      "documents_classified_total",
			Help:      "Documents classified, by convention and detected schema tag.",
		}, []string{"convention", "tag"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insightviz",
			Name:      "extraction_failures_total",
			Help:      "Documents that matched a schema but could not be reshaped.",
		}, []string{"convention", "tag"}),
		passThrough: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "insightviz",
			Name:      "documents_passed_through_total",
			Help:      "Documents no schema matched.",
		}, []string{"convention"}),
	}
	r.registry.MustRegister(r.classified, r.failed, r.passThrough)
	return r
}

// Classified counts a classification, and a pass-through when the tag is unknown.
func (r *Recorder) Classified(convention string, tag analytics.Tag) {
	r.classified.WithLabelValues(convention, tag.String()).Inc()
	if tag == analytics.TagUnknown {
		r.passThrough.WithLabelValues(convention).Inc()
	}
}

// ExtractionFailed counts an extractor error for tag.
func (r *Recorder) ExtractionFailed(convention string, tag analytics.Tag) {
	r.failed.WithLabelValues(convention, tag.String()).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
