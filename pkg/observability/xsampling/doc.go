// Package xsampling 调用采样策略。
//
// xcall.Sampled 把 Sampler 适配为调用点 Filter：只有被采样的调用才会驱动观察者。
//
// 策略：
//   - [Always] / [Never]：全采样 / 不采样
//   - [NewRateSampler]：按比率随机采样
//   - [NewCountSampler]：每 n 次调用采样 1 次
//   - [NewKeyBasedSampler]：按 key 一致性采样（xxhash），[ByTraceID] 以 xctx trace_id 为 key，
//     保证同一条链路上的所有调用采样决策一致
//   - [All] / [Any]：组合
//
// 所有采样器并发安全。
package xsampling
