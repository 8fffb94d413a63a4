// Package xctx 在 context 中传递追踪标识（trace_id、span_id、request_id、trace_flags）。
//
// xlog 的 EnrichHandler 从这里读取字段注入日志，
// xobserve 的追踪观察者在 context 中没有 OTel span 时以这里的字段作为远程父 span。
//
// 所有 With* 函数对 nil ctx 返回 ErrNilContext；读取函数对 nil ctx 返回空字符串。
package xctx
