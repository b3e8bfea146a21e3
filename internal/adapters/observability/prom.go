// Package observability implements the Observability port with
// Prometheus metrics and zerolog structured logging.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"streamtiff/internal/ports"
)

type PromObs struct {
	log      zerolog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
	skipped  *prometheus.CounterVec
}

// NewPromObs registers the exporter metrics on reg (the default
// registerer when nil) and logs through the given logger.
func NewPromObs(log zerolog.Logger, reg prometheus.Registerer) *PromObs {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamtiff_frames_written_total",
		Help: "Total image frames appended to TIFF artifacts.",
	})
	documents := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamtiff_documents_routed_total",
		Help: "Total documents accepted by the serializer.",
	})
	ignored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "streamtiff_documents_ignored_total",
		Help: "Documents of unknown kind that were dropped.",
	})
	writers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "streamtiff_open_writers",
		Help: "TIFF writers currently open.",
	})
	pageLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "streamtiff_event_page_seconds",
		Help:    "Time spent serializing one event page.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
	})
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "streamtiff_fields_skipped_total",
		Help: "Fields dropped because their declared shape is not image-like.",
	}, []string{"stream", "field"})

	reg.MustRegister(frames, documents, ignored, writers, pageLatency, skipped)

	return &PromObs{
		log: log,
		counters: map[string]prometheus.Counter{
			"streamtiff_frames_written_total":    frames,
			"streamtiff_documents_routed_total":  documents,
			"streamtiff_documents_ignored_total": ignored,
		},
		gauges: map[string]prometheus.Gauge{
			"streamtiff_open_writers": writers,
		},
		histos: map[string]prometheus.Observer{
			"streamtiff_event_page_seconds": pageLatency,
		},
		skipped: skipped,
	}
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	event(p.log.Info(), fields).Msg(msg)
}

func (p *PromObs) LogWarn(msg string, fields ...ports.Field) {
	event(p.log.Warn(), fields).Msg(msg)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	event(p.log.Error().Err(err), fields).Msg(msg)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) RecordSkippedField(stream, field string, ndim int) {
	p.skipped.WithLabelValues(stream, field).Inc()
	p.log.Debug().
		Str("stream", stream).
		Str("field", field).
		Int("ndim", ndim).
		Msg("field skipped: declared shape is not image-like")
}

func event(e *zerolog.Event, fields []ports.Field) *zerolog.Event {
	for _, f := range fields {
		e = e.Interface(f.Key, f.Value)
	}
	return e
}

var _ ports.Observability = (*PromObs)(nil)
