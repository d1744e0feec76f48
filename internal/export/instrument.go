package export

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"legalpub/internal/model"
)

const tracerName = "legalpub/internal/export"

// Outcome labels.
const (
	OutcomeSuccess       = "success"
	OutcomeError         = "error"
	OutcomeTargetMissing = "target_missing"
	OutcomeCanceled      = "canceled"
)

// Metrics counts exports and observes their latency.
type Metrics struct {
	exports  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the export collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legalpub_exports_total",
				Help: "Total number of PDF exports by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "legalpub_export_duration_seconds",
				Help:    "PDF export latency in seconds.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"strategy"},
		),
	}
	if err := reg.Register(m.exports); err != nil {
		return nil, err
	}
	if err := reg.Register(m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

type instrumented struct {
	next    Exporter
	metrics *Metrics
	tracer  trace.Tracer
}

// Instrument wraps next with a span per export and, when m is non-nil,
// Prometheus metrics.
func Instrument(next Exporter, m *Metrics) Exporter {
	return &instrumented{next: next, metrics: m, tracer: otel.Tracer(tracerName)}
}

func (i *instrumented) Strategy() Strategy { return i.next.Strategy() }

func (i *instrumented) Export(ctx context.Context, doc *model.LegalDocument) (*Artifact, error) {
	strategy := string(i.next.Strategy())
	ctx, span := i.tracer.Start(ctx, "export.Export", trace.WithAttributes(
		attribute.String("export.strategy", strategy),
		attribute.String("document.slug", doc.Slug),
	))
	defer span.End()

	start := time.Now()
	art, err := i.next.Export(ctx, doc)
	outcome := Outcome(err)

	if i.metrics != nil {
		i.metrics.exports.WithLabelValues(strategy, outcome).Inc()
		i.metrics.duration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil, err
	}
	span.SetAttributes(attribute.Int("export.bytes", len(art.Body)))
	return art, nil
}

// Close forwards to the wrapped exporter when it holds resources.
func (i *instrumented) Close() error {
	if c, ok := i.next.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// Outcome classifies an export result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, ErrCaptureTargetMissing):
		return OutcomeTargetMissing
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	}
	return OutcomeError
}
