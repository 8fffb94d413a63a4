package xobserve

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
)

// 指标名称。
const (
	MetricCallTotal    = "xprobe.call.total"
	MetricCallDuration = "xprobe.call.duration"
)

// Metrics OpenTelemetry 指标观察者。
type Metrics struct {
	gate
	total    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics 创建指标观察者。
func NewMetrics(opts ...Option) (*Metrics, error) {
	cfg := newConfig("metrics", opts)
	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	total, err := meter.Int64Counter(
		MetricCallTotal,
		metric.WithDescription("total intercepted calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xobserve: create counter failed: %w", err)
	}
	duration, err := meter.Float64Histogram(
		MetricCallDuration,
		metric.WithDescription("intercepted call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xobserve: create histogram failed: %w", err)
	}
	return &Metrics{
		gate:     gate{sw: cfg.sw, name: cfg.name},
		total:    total,
		duration: duration,
	}, nil
}

// Before 不产生额外状态，Descriptor 本身携带开始时间。
func (m *Metrics) Before(d *xcall.Descriptor) (any, error) {
	return d, nil
}

// AfterSuccess 记录成功调用。
func (m *Metrics) AfterSuccess(state, _ any) error {
	return m.record(state, nil)
}

// AfterFailure 记录失败调用。
func (m *Metrics) AfterFailure(state any, cause error) error {
	return m.record(state, cause)
}

func (m *Metrics) record(state any, cause error) error {
	d, ok := state.(*xcall.Descriptor)
	if !ok || d == nil {
		return ErrUnexpectedState
	}
	// 调用方 ctx 可能已取消，指标仍需记录
	ctx := context.WithoutCancel(d.Context())
	attrs := metric.WithAttributes(
		attribute.String("target", d.Target()),
		attribute.String("method", d.Method()),
		attribute.String("status", statusOf(cause)),
	)
	m.total.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Elapsed().Seconds(), attrs)
	return nil
}

var _ xcall.Observer = (*Metrics)(nil)
