package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kain88-de/reviewr/internal/activity"
	"github.com/kain88-de/reviewr/internal/platform"
)

const platformScopeName = "github.com/kain88-de/reviewr/platform"

// InstrumentedPlatform wraps a platform.Platform with OTel tracing and
// metrics. Every network-facing method gets a span and is counted in
// reviewr.platform.* metrics. Use WrapPlatform to create one.
type InstrumentedPlatform struct {
	inner  platform.Platform
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
	items  metric.Int64Histogram
}

// WrapPlatform returns p decorated with OTel instrumentation.
// When telemetry is disabled, p is returned as-is.
func WrapPlatform(p platform.Platform) platform.Platform {
	if !Enabled() {
		return p
	}
	m := Meter(platformScopeName)
	ops, _ := m.Int64Counter("reviewr.platform.operations",
		metric.WithDescription("Total platform operations executed"),
	)
	dur, _ := m.Float64Histogram("reviewr.platform.operation.duration",
		metric.WithDescription("Platform operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("reviewr.platform.errors",
		metric.WithDescription("Total platform operation errors"),
	)
	items, _ := m.Int64Histogram("reviewr.platform.items",
		metric.WithDescription("Items returned per detailed fetch"),
	)
	return &InstrumentedPlatform{
		inner:  p,
		tracer: Tracer(platformScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
		items:  items,
	}
}

// Unwrap returns the decorated platform.
func (p *InstrumentedPlatform) Unwrap() platform.Platform { return p.inner }

func (p *InstrumentedPlatform) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time, []attribute.KeyValue) {
	all := append([]attribute.KeyValue{
		attribute.String("reviewr.platform", p.inner.ID()),
		attribute.String("reviewr.operation", name),
	}, attrs...)
	ctx, span := p.tracer.Start(ctx, "platform."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	p.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now(), all
}

func (p *InstrumentedPlatform) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs []attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	p.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func (p *InstrumentedPlatform) ID() string         { return p.inner.ID() }
func (p *InstrumentedPlatform) Name() string       { return p.inner.Name() }
func (p *InstrumentedPlatform) Icon() string       { return p.inner.Icon() }
func (p *InstrumentedPlatform) IsConfigured() bool { return p.inner.IsConfigured() }

func (p *InstrumentedPlatform) ItemURL(item activity.Item) string { return p.inner.ItemURL(item) }

func (p *InstrumentedPlatform) ActivityMetrics(ctx context.Context, user string, days int) (activity.Metrics, error) {
	ctx, span, t, attrs := p.op(ctx, "ActivityMetrics", attribute.Int("reviewr.days", days))
	v, err := p.inner.ActivityMetrics(ctx, user, days)
	p.done(ctx, span, t, err, attrs)
	return v, err
}

func (p *InstrumentedPlatform) DetailedActivities(ctx context.Context, user string, days int) (activity.DetailedActivities, error) {
	ctx, span, t, attrs := p.op(ctx, "DetailedActivities", attribute.Int("reviewr.days", days))
	v, err := p.inner.DetailedActivities(ctx, user, days)
	if err == nil {
		total := v.Total()
		span.SetAttributes(attribute.Int("reviewr.items", total))
		p.items.Record(ctx, int64(total), metric.WithAttributes(attrs...))
	}
	p.done(ctx, span, t, err, attrs)
	return v, err
}

func (p *InstrumentedPlatform) SearchItems(ctx context.Context, query, user string) ([]activity.Item, error) {
	ctx, span, t, attrs := p.op(ctx, "SearchItems")
	v, err := p.inner.SearchItems(ctx, query, user)
	p.done(ctx, span, t, err, attrs)
	return v, err
}

func (p *InstrumentedPlatform) TestConnection(ctx context.Context) (activity.ConnectionStatus, error) {
	ctx, span, t, attrs := p.op(ctx, "TestConnection")
	v, err := p.inner.TestConnection(ctx)
	if err == nil {
		span.SetAttributes(attribute.String("reviewr.connection.state", v.String()))
	}
	p.done(ctx, span, t, err, attrs)
	return v, err
}
