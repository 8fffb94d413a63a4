// Package xlog 基于 log/slog 的结构化日志库，是 xprobe 各组件的日志通道。
//
// # 创建 Logger
//
// Builder 模式，first-error-wins：遇到第一个配置错误后其余设置被跳过，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//		SetLevel(xlog.LevelInfo).
//		SetFormat("json").
//		SetRotation("/var/log/xprobe/calls.log").
//		Build()
//	defer cleanup()
//
// # 上下文注入
//
// 默认启用 [EnrichHandler]：自动从 context 中提取 xctx 的 trace_id、span_id 等字段。
//
// # 调用相关属性
//
// [Target]、[Method]、[CallID]、[Observer]、[Phase]、[Status]、[Err]、[Duration]
// 为拦截引擎与观察者统一字段名。
//
// # 全局 Logger
//
// [Default] 惰性初始化（stderr、Info、text），[SetDefault] 替换，[ResetDefault] 仅用于测试。
package xlog
