// Package intercept 提供调用拦截相关的子包。
//
// 子包列表：
//   - xcall: 调用点、观察者契约、组合与错误隔离
//   - xfuture: 一次性完成的 Future/Promise，承载异步调用结果
//   - xswitch: 观察者开关，支持配置驱动与热加载
//   - xgrpc: gRPC 一元拦截器适配
package intercept
