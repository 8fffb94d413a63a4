package xobserve

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xprobe/pkg/intercept/xswitch"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

const defaultInstrumentationName = "github.com/omeyang/xprobe/xobserve"

// 调用结果取值。
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

var (
	// ErrUnexpectedState After 收到的状态不是本观察者 Before 产生的。
	ErrUnexpectedState = errors.New("xobserve: unexpected observer state")

	// ErrNilObserver Quarantine 收到 nil 观察者。
	ErrNilObserver = errors.New("xobserve: nil observer")
)

// Option 观察者配置选项。各构造函数只读取与自己相关的字段。
type Option func(*config)

type config struct {
	sw                  xswitch.Switch
	name                string
	instrumentationName string
	tracerProvider      trace.TracerProvider
	meterProvider       metric.MeterProvider
	spanKind            trace.SpanKind
	logger              xlog.Logger
	logArgs             bool
	callLevels          xlog.CallLevels
	registerer          prometheus.Registerer
	namespace           string
	buckets             []float64
}

func newConfig(name string, opts []Option) *config {
	cfg := &config{
		sw:                  xswitch.On,
		name:                name,
		instrumentationName: defaultInstrumentationName,
		tracerProvider:      otel.GetTracerProvider(),
		meterProvider:       otel.GetMeterProvider(),
		spanKind:            trace.SpanKindInternal,
		callLevels:          xlog.DefaultCallLevels(),
		registerer:          prometheus.DefaultRegisterer,
		namespace:           "xprobe",
		buckets:             prometheus.DefBuckets,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithSwitch 设置启停开关，默认常开。
func WithSwitch(sw xswitch.Switch) Option {
	return func(cfg *config) {
		if sw != nil {
			cfg.sw = sw
		}
	}
}

// WithName 覆盖观察者名称（用于错误报告与开关注册表中的组件 id）。
func WithName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.name = name
		}
	}
}

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithTracerProvider 设置 TracerProvider，默认全局。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.tracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider，默认全局。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// WithSpanKind 设置 span 类型，默认 Internal。
func WithSpanKind(kind trace.SpanKind) Option {
	return func(cfg *config) {
		cfg.spanKind = kind
	}
}

// WithLogger 设置日志观察者使用的 Logger，默认 xlog.Default()。
func WithLogger(logger xlog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithLogArgs 日志中是否记录参数个数与参数值，默认关闭。
func WithLogArgs(enable bool) Option {
	return func(cfg *config) {
		cfg.logArgs = enable
	}
}

// WithCallLevels 设置日志观察者各阶段的级别，默认 xlog.DefaultCallLevels()。
func WithCallLevels(levels xlog.CallLevels) Option {
	return func(cfg *config) {
		cfg.callLevels = levels
	}
}

// WithRegisterer 设置 prometheus 注册器，默认 prometheus.DefaultRegisterer。
func WithRegisterer(r prometheus.Registerer) Option {
	return func(cfg *config) {
		if r != nil {
			cfg.registerer = r
		}
	}
}

// WithNamespace 设置 prometheus 指标命名空间，默认 xprobe。
func WithNamespace(ns string) Option {
	return func(cfg *config) {
		cfg.namespace = ns
	}
}

// WithBuckets 设置 prometheus 直方图桶（秒）。
func WithBuckets(buckets []float64) Option {
	return func(cfg *config) {
		if len(buckets) > 0 {
			cfg.buckets = buckets
		}
	}
}

// gate 开关与名称，嵌入到各观察者。
type gate struct {
	sw   xswitch.Switch
	name string
}

// Enabled 读取开关。
func (g gate) Enabled() bool { return g.sw.Enabled() }

// Name 观察者名称。
func (g gate) Name() string { return g.name }

// statusOf cause 为 nil 表示成功。
func statusOf(cause error) string {
	switch {
	case cause == nil:
		return StatusOK
	case errors.Is(cause, context.Canceled):
		return StatusCanceled
	default:
		return StatusError
	}
}
