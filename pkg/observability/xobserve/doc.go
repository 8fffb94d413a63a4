// Package xobserve 提供开箱即用的 xcall 观察者。
//
//   - [NewMetrics]：OpenTelemetry 指标，xprobe.call.total 计数与 xprobe.call.duration 直方图
//   - [NewTracing]：OpenTelemetry 追踪，每次调用一个 span
//   - [NewLogging]：xlog 结构化日志
//   - [NewPrometheus]：prometheus client_golang 指标
//   - [Quarantine]：熔断隔离，连续失败的观察者被暂时禁用
//
// 所有观察者通过 [WithSwitch] 接入 xswitch 开关，Enabled 只读取开关，无副作用。
//
// # 状态约定
//
// Before 返回的状态只由同一观察者的 After 消费；收到不认识的状态时返回 [ErrUnexpectedState]，
// 由调用点的 Reporter 记录，不影响业务调用。
//
// # 调用结果
//
// 指标与日志中的 status 取值：ok、error、canceled（cause 满足 errors.Is(err, context.Canceled)）。
package xobserve
