package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sony/gobreaker/v2"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/omeyang/xprobe/pkg/config/xconf"
	"github.com/omeyang/xprobe/pkg/intercept/xcall"
	"github.com/omeyang/xprobe/pkg/intercept/xswitch"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
	"github.com/omeyang/xprobe/pkg/observability/xobserve"
	"github.com/omeyang/xprobe/pkg/observability/xrotate"
	"github.com/omeyang/xprobe/pkg/observability/xsampling"
)

// 观察者组件 id，对应配置 instrument.components.<id>.enabled。
const (
	componentLogging    = "logging"
	componentTracing    = "tracing"
	componentMetrics    = "metrics"
	componentPrometheus = "prometheus"
)

var components = []string{componentLogging, componentTracing, componentMetrics, componentPrometheus}

func buildLogger(c logConfig, out io.Writer) (xlog.LoggerWithLevel, func() error, error) {
	b := xlog.New().
		SetOutput(out).
		SetLevelString(c.Level).
		SetFormat(c.Format).
		SetEnrich(true)
	if c.File != "" {
		b = b.SetRotation(c.File,
			xrotate.WithMaxSize(c.MaxSizeMB),
			xrotate.WithMaxBackups(c.MaxBackups),
			xrotate.WithCompress(c.Compress),
		)
	}
	return b.Build()
}

// probe 一条完整的拦截链路：开关、观察者、调用点与各自的导出端。
type probe struct {
	site     *xcall.Site
	switches *xswitch.Registry
	reporter *xcall.LogReporter
	guards   []*xobserve.Quarantined

	prom           *prometheus.Registry
	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

func newProbe(cfg *xconf.Config, app *appConfig, logger xlog.Logger) (*probe, error) {
	switches, err := xswitch.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	p := &probe{
		switches: switches,
		prom:     prometheus.NewRegistry(),
		reader:   sdkmetric.NewManualReader(),
		reporter: xcall.NewLogReporter(logger),
	}
	p.meterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(p.reader))
	p.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanLogger{logger: logger}))

	observers, err := p.observers(logger)
	if err != nil {
		return nil, errors.Join(err, p.shutdown(context.Background()))
	}
	for _, o := range observers {
		q, err := xobserve.Quarantine(o,
			xobserve.WithTripAfter(app.Quarantine.TripAfter),
			xobserve.WithCooldown(app.Quarantine.Cooldown),
			xobserve.WithStateChange(func(name string, from, to gobreaker.State) {
				logger.Warn(context.Background(), "observer quarantine state changed",
					xlog.Observer(name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
			}),
		)
		if err != nil {
			return nil, errors.Join(err, p.shutdown(context.Background()))
		}
		p.guards = append(p.guards, q)
	}

	filter, err := buildFilter(app.Sampling)
	if err != nil {
		return nil, errors.Join(err, p.shutdown(context.Background()))
	}

	b := xcall.NewBuilder().Target(app.Demo.Target).Filter(filter).Reporter(p.reporter)
	for _, q := range p.guards {
		b.Observe(q)
	}
	p.site = b.Build()
	return p, nil
}

func (p *probe) observers(logger xlog.Logger) ([]xcall.Observer, error) {
	metrics, err := xobserve.NewMetrics(
		xobserve.WithSwitch(p.switches.Switch(componentMetrics)),
		xobserve.WithMeterProvider(p.meterProvider),
	)
	if err != nil {
		return nil, err
	}
	prom, err := xobserve.NewPrometheus(
		xobserve.WithSwitch(p.switches.Switch(componentPrometheus)),
		xobserve.WithRegisterer(p.prom),
	)
	if err != nil {
		return nil, err
	}
	return []xcall.Observer{
		xobserve.NewLogging(
			xobserve.WithSwitch(p.switches.Switch(componentLogging)),
			xobserve.WithLogger(logger),
			xobserve.WithLogArgs(true),
		),
		xobserve.NewTracing(
			xobserve.WithSwitch(p.switches.Switch(componentTracing)),
			xobserve.WithTracerProvider(p.tracerProvider),
		),
		metrics,
		prom,
	}, nil
}

func buildFilter(c samplingConfig) (xcall.Filter, error) {
	if c.Rate >= 1 && !c.ByTrace {
		return xcall.ObserveAll(), nil
	}
	var (
		s   xsampling.Sampler
		err error
	)
	if c.ByTrace {
		s, err = xsampling.ByTraceID(c.Rate)
	} else {
		s, err = xsampling.NewRateSampler(c.Rate)
	}
	if err != nil {
		return nil, err
	}
	return xcall.Sampled(s), nil
}

func (p *probe) shutdown(ctx context.Context) error {
	return errors.Join(p.tracerProvider.Shutdown(ctx), p.meterProvider.Shutdown(ctx))
}

// writeExposition 以 Prometheus 文本格式输出已注册的指标。
func (p *probe) writeExposition(w io.Writer) error {
	families, err := p.prom.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}

// writeOTelSummary 汇总 OpenTelemetry 指标：每个指标一行。
func (p *probe) writeOTelSummary(ctx context.Context, w io.Writer) error {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return fmt.Errorf("collect otel metrics: %w", err)
	}
	var lines []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				lines = append(lines, fmt.Sprintf("%s total=%d series=%d", m.Name, total, len(data.DataPoints)))
			case metricdata.Histogram[float64]:
				var count uint64
				for _, dp := range data.DataPoints {
					count += dp.Count
				}
				lines = append(lines, fmt.Sprintf("%s count=%d series=%d", m.Name, count, len(data.DataPoints)))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// spanLogger 将结束的 span 写入日志，代替外部 trace 导出器。
type spanLogger struct {
	logger xlog.Logger
}

func (s spanLogger) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (s spanLogger) OnEnd(span sdktrace.ReadOnlySpan) {
	s.logger.Debug(context.Background(), "span ended",
		slog.String("span", span.Name()),
		slog.String("trace_id", span.SpanContext().TraceID().String()),
		xlog.Duration(span.EndTime().Sub(span.StartTime())),
		xlog.Status(span.Status().Code.String()),
	)
}

func (s spanLogger) Shutdown(context.Context) error { return nil }

func (s spanLogger) ForceFlush(context.Context) error { return nil }

var _ sdktrace.SpanProcessor = spanLogger{}
