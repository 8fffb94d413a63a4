package xobserve

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
)

var callLabels = []string{"target", "method", "status"}

// Prometheus prometheus client_golang 指标观察者。
type Prometheus struct {
	gate
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheus 创建 prometheus 观察者并注册到 WithRegisterer 指定的注册器。
//
// 同名指标已注册时复用已有的收集器，多个调用点可以共享同一组指标。
func NewPrometheus(opts ...Option) (*Prometheus, error) {
	cfg := newConfig("prometheus", opts)

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.namespace,
		Name:      "calls_total",
		Help:      "Total number of intercepted calls.",
	}, callLabels)
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.namespace,
		Name:      "call_duration_seconds",
		Help:      "Duration of intercepted calls in seconds.",
		Buckets:   cfg.buckets,
	}, callLabels)

	var err error
	if calls, err = register(cfg.registerer, calls); err != nil {
		return nil, err
	}
	if duration, err = register(cfg.registerer, duration); err != nil {
		return nil, err
	}
	return &Prometheus{
		gate:     gate{sw: cfg.sw, name: cfg.name},
		calls:    calls,
		duration: duration,
	}, nil
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) (C, error) {
	err := r.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("xobserve: register prometheus collector: %w", err)
}

// Before 不产生额外状态。
func (p *Prometheus) Before(d *xcall.Descriptor) (any, error) {
	return d, nil
}

// AfterSuccess 记录成功调用。
func (p *Prometheus) AfterSuccess(state, _ any) error {
	return p.record(state, nil)
}

// AfterFailure 记录失败调用。
func (p *Prometheus) AfterFailure(state any, cause error) error {
	return p.record(state, cause)
}

func (p *Prometheus) record(state any, cause error) error {
	d, ok := state.(*xcall.Descriptor)
	if !ok || d == nil {
		return ErrUnexpectedState
	}
	labels := prometheus.Labels{
		"target": d.Target(),
		"method": d.Method(),
		"status": statusOf(cause),
	}
	p.calls.With(labels).Inc()
	p.duration.With(labels).Observe(d.Elapsed().Seconds())
	return nil
}

// Collectors 返回底层收集器，便于测试或自定义暴露。
func (p *Prometheus) Collectors() (*prometheus.CounterVec, *prometheus.HistogramVec) {
	return p.calls, p.duration
}

var _ xcall.Observer = (*Prometheus)(nil)
