package xctx

import "errors"

// contextKey 包私有 key 类型，字符串值便于调试时识别。
type contextKey string

var (
	// ErrNilContext 传入的 context 为 nil。
	ErrNilContext = errors.New("xctx: nil context")

	// ErrMissingTraceID trace_id 缺失。
	ErrMissingTraceID = errors.New("xctx: missing trace_id")
)
