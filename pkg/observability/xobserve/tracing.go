package xobserve

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/xprobe/pkg/context/xctx"
	"github.com/omeyang/xprobe/pkg/intercept/xcall"
)

// Tracing OpenTelemetry 追踪观察者。
//
// span 的父级取自调用方 ctx；ctx 中没有 span 但有 xctx trace_id/span_id 时，以其作为远端父级。
// 新 span 不会回写到真实调用的 ctx 中。
type Tracing struct {
	gate
	tracer trace.Tracer
	kind   trace.SpanKind
}

// NewTracing 创建追踪观察者。
func NewTracing(opts ...Option) *Tracing {
	cfg := newConfig("tracing", opts)
	return &Tracing{
		gate:   gate{sw: cfg.sw, name: cfg.name},
		tracer: cfg.tracerProvider.Tracer(cfg.instrumentationName),
		kind:   cfg.spanKind,
	}
}

// Before 开启 span。
func (t *Tracing) Before(d *xcall.Descriptor) (any, error) {
	_, span := t.tracer.Start(
		ensureParentSpan(d.Context()),
		d.Method(),
		trace.WithSpanKind(t.kind),
		trace.WithTimestamp(d.Start()),
		trace.WithAttributes(
			attribute.String("xprobe.target", d.Target()),
			attribute.String("xprobe.signature", d.Signature().String()),
			attribute.String("xprobe.call_id", d.ID()),
			attribute.Int("xprobe.args", d.NumArgs()),
		),
	)
	return span, nil
}

// AfterSuccess 以 Ok 状态结束 span。
func (t *Tracing) AfterSuccess(state, _ any) error {
	span, ok := state.(trace.Span)
	if !ok {
		return ErrUnexpectedState
	}
	span.SetStatus(codes.Ok, "")
	span.End()
	return nil
}

// AfterFailure 记录错误并以 Error 状态结束 span。
func (t *Tracing) AfterFailure(state any, cause error) error {
	span, ok := state.(trace.Span)
	if !ok {
		return ErrUnexpectedState
	}
	if cause != nil {
		span.RecordError(cause)
		span.SetStatus(codes.Error, cause.Error())
	} else {
		span.SetStatus(codes.Error, "call failed")
	}
	span.SetAttributes(attribute.String("xprobe.status", statusOf(cause)))
	span.End()
	return nil
}

// ensureParentSpan 将 xctx 中的追踪标识转换为远端父 span。
func ensureParentSpan(ctx context.Context) context.Context {
	if trace.SpanContextFromContext(ctx).IsValid() {
		return ctx
	}
	tr := xctx.GetTrace(ctx)
	if tr.TraceID == "" || tr.SpanID == "" {
		return ctx
	}
	traceID, err := trace.TraceIDFromHex(tr.TraceID)
	if err != nil {
		return ctx
	}
	spanID, err := trace.SpanIDFromHex(tr.SpanID)
	if err != nil {
		return ctx
	}
	var flags trace.TraceFlags
	if tr.TraceFlags != "" {
		if parsed, err := strconv.ParseUint(tr.TraceFlags, 16, 8); err == nil {
			flags = trace.TraceFlags(parsed)
		}
	}
	return trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: flags,
		Remote:     true,
	}))
}

var _ xcall.Observer = (*Tracing)(nil)
