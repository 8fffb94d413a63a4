// Package context 提供上下文相关的子包。
//
// 子包列表：
//   - xctx: 在 context 中注入/提取追踪信息（trace/span/request id）
//
// 所有上下文信息通过 context.Context 传递，不使用全局变量。
package context
