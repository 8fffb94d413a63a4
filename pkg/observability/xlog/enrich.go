package xlog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omeyang/xprobe/pkg/context/xctx"
)

// ErrNilHandler NewEnrichHandler 的 base 为 nil。
var ErrNilHandler = errors.New("xlog: base handler is nil")

// maxEnrichAttrs 最多注入的字段数（trace_id, span_id, request_id, trace_flags）。
const maxEnrichAttrs = 4

// EnrichHandler 在 Handle 时从 context 注入 xctx 追踪字段。
//
// 缺失字段直接跳过，不影响日志写入。
type EnrichHandler struct {
	base slog.Handler
}

// NewEnrichHandler 包装 base handler。
func NewEnrichHandler(base slog.Handler) (*EnrichHandler, error) {
	if base == nil {
		return nil, ErrNilHandler
	}
	return &EnrichHandler{base: base}, nil
}

// Enabled 委托给 base。
func (h *EnrichHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

// Handle 注入追踪字段后交给 base。按 slog 契约先 Clone 再修改 record。
func (h *EnrichHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf [maxEnrichAttrs]slog.Attr
	attrs := xctx.AppendTraceAttrs(buf[:0], ctx)
	if len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.base.Handle(ctx, r)
}

// WithAttrs 实现 slog.Handler。
func (h *EnrichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EnrichHandler{base: h.base.WithAttrs(attrs)}
}

// WithGroup 实现 slog.Handler。分组之后注入的字段也会落在该分组下。
func (h *EnrichHandler) WithGroup(name string) slog.Handler {
	return &EnrichHandler{base: h.base.WithGroup(name)}
}
