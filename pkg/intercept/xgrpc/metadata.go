package xgrpc

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"

	"github.com/omeyang/xprobe/pkg/context/xctx"
)

// Metadata key，遵循 gRPC 小写加连字符惯例。
const (
	MetaTraceID     = "x-trace-id"
	MetaSpanID      = "x-span-id"
	MetaRequestID   = "x-request-id"
	MetaTraceparent = "traceparent"
)

func first(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// TraceFromMetadata 从 metadata 提取追踪标识。合法的 traceparent 优先于自定义 key。
func TraceFromMetadata(md metadata.MD) xctx.Trace {
	if md == nil {
		return xctx.Trace{}
	}
	tr := xctx.Trace{
		TraceID:   first(md, MetaTraceID),
		SpanID:    first(md, MetaSpanID),
		RequestID: first(md, MetaRequestID),
	}
	if traceID, spanID, flags, ok := parseTraceparent(first(md, MetaTraceparent)); ok {
		tr.TraceID, tr.SpanID, tr.TraceFlags = traceID, spanID, flags
	}
	return tr
}

// ExtractIncoming 将 incoming metadata 中的追踪标识注入 ctx。
func ExtractIncoming(ctx context.Context) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ctx
	}
	if next, err := xctx.WithTrace(ctx, TraceFromMetadata(md)); err == nil {
		return next
	}
	return ctx
}

// InjectOutgoing 将 ctx 中的追踪标识追加到 outgoing metadata。
//
// 已存在的 key 不覆盖；trace_id 与 span_id 都合法时额外写入 traceparent。
func InjectOutgoing(ctx context.Context) context.Context {
	tr := xctx.GetTrace(ctx)
	existing, _ := metadata.FromOutgoingContext(ctx)

	var kv []string
	add := func(key, val string) {
		if val != "" && len(existing.Get(key)) == 0 {
			kv = append(kv, key, val)
		}
	}
	add(MetaTraceID, tr.TraceID)
	add(MetaSpanID, tr.SpanID)
	add(MetaRequestID, tr.RequestID)
	if tp, ok := formatTraceparent(tr); ok {
		add(MetaTraceparent, tp)
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

// parseTraceparent 解析 version-00 格式：00-{32hex}-{16hex}-{2hex}。
func parseTraceparent(s string) (traceID, spanID, flags string, ok bool) {
	parts := strings.Split(strings.ToLower(s), "-")
	if len(parts) != 4 || parts[0] != "00" || len(parts[3]) != 2 {
		return "", "", "", false
	}
	tid, err := trace.TraceIDFromHex(parts[1])
	if err != nil {
		return "", "", "", false
	}
	sid, err := trace.SpanIDFromHex(parts[2])
	if err != nil {
		return "", "", "", false
	}
	if !isHex(parts[3]) {
		return "", "", "", false
	}
	return tid.String(), sid.String(), parts[3], true
}

func formatTraceparent(tr xctx.Trace) (string, bool) {
	tid, err := trace.TraceIDFromHex(strings.ToLower(tr.TraceID))
	if err != nil {
		return "", false
	}
	sid, err := trace.SpanIDFromHex(strings.ToLower(tr.SpanID))
	if err != nil {
		return "", false
	}
	flags := "00"
	if len(tr.TraceFlags) == 2 && isHex(tr.TraceFlags) {
		flags = strings.ToLower(tr.TraceFlags)
	}
	return "00-" + tid.String() + "-" + sid.String() + "-" + flags, true
}

func isHex(s string) bool {
	for i := range len(s) {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
