package xctx

import (
	"context"
	"log/slog"
)

// 日志字段名，遵循 OpenTelemetry 语义约定（下划线分隔）。
const (
	KeyTraceID    = "trace_id"
	KeySpanID     = "span_id"
	KeyRequestID  = "request_id"
	KeyTraceFlags = "trace_flags"
)

const (
	keyTraceID    = contextKey("xctx:trace_id")
	keySpanID     = contextKey("xctx:span_id")
	keyRequestID  = contextKey("xctx:request_id")
	keyTraceFlags = contextKey("xctx:trace_flags")
)

func with(ctx context.Context, key contextKey, v string) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	return context.WithValue(ctx, key, v), nil
}

func get(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithTraceID 注入 trace ID。
func WithTraceID(ctx context.Context, traceID string) (context.Context, error) {
	return with(ctx, keyTraceID, traceID)
}

// TraceID 读取 trace ID，不存在返回空字符串。
func TraceID(ctx context.Context) string {
	return get(ctx, keyTraceID)
}

// RequireTraceID 读取 trace ID，缺失时返回 ErrMissingTraceID。
func RequireTraceID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ErrNilContext
	}
	if v := TraceID(ctx); v != "" {
		return v, nil
	}
	return "", ErrMissingTraceID
}

// WithSpanID 注入 span ID。
func WithSpanID(ctx context.Context, spanID string) (context.Context, error) {
	return with(ctx, keySpanID, spanID)
}

// SpanID 读取 span ID。
func SpanID(ctx context.Context) string {
	return get(ctx, keySpanID)
}

// WithRequestID 注入 request ID。
func WithRequestID(ctx context.Context, requestID string) (context.Context, error) {
	return with(ctx, keyRequestID, requestID)
}

// RequestID 读取 request ID。
func RequestID(ctx context.Context) string {
	return get(ctx, keyRequestID)
}

// WithTraceFlags 注入 W3C trace-flags（两位十六进制，如 "01"）。
func WithTraceFlags(ctx context.Context, flags string) (context.Context, error) {
	return with(ctx, keyTraceFlags, flags)
}

// TraceFlags 读取 trace-flags。
func TraceFlags(ctx context.Context) string {
	return get(ctx, keyTraceFlags)
}

// Trace 追踪字段集合。
type Trace struct {
	TraceID    string
	SpanID     string
	RequestID  string
	TraceFlags string
}

// GetTrace 批量读取追踪字段。
func GetTrace(ctx context.Context) Trace {
	return Trace{
		TraceID:    TraceID(ctx),
		SpanID:     SpanID(ctx),
		RequestID:  RequestID(ctx),
		TraceFlags: TraceFlags(ctx),
	}
}

// WithTrace 批量注入非空字段。
func WithTrace(ctx context.Context, tr Trace) (context.Context, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	pairs := [...]struct {
		key contextKey
		v   string
	}{
		{keyTraceID, tr.TraceID},
		{keySpanID, tr.SpanID},
		{keyRequestID, tr.RequestID},
		{keyTraceFlags, tr.TraceFlags},
	}
	for _, p := range pairs {
		if p.v != "" {
			ctx = context.WithValue(ctx, p.key, p.v)
		}
	}
	return ctx, nil
}

// AppendTraceAttrs 将非空追踪字段追加到 attrs，热路径上配合栈数组使用避免分配。
func AppendTraceAttrs(attrs []slog.Attr, ctx context.Context) []slog.Attr {
	if ctx == nil {
		return attrs
	}
	tr := GetTrace(ctx)
	if tr.TraceID != "" {
		attrs = append(attrs, slog.String(KeyTraceID, tr.TraceID))
	}
	if tr.SpanID != "" {
		attrs = append(attrs, slog.String(KeySpanID, tr.SpanID))
	}
	if tr.RequestID != "" {
		attrs = append(attrs, slog.String(KeyRequestID, tr.RequestID))
	}
	if tr.TraceFlags != "" {
		attrs = append(attrs, slog.String(KeyTraceFlags, tr.TraceFlags))
	}
	return attrs
}
