// Package xgrpc 把 gRPC 一元调用接入 xcall 调用点。
//
// 服务端：
//
//	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(xgrpc.UnaryServerInterceptor(site, "inventory")))
//
// 客户端：
//
//	conn, err := grpc.NewClient(addr, grpc.WithChainUnaryInterceptor(xgrpc.UnaryClientInterceptor(site, "")))
//
// FullMethod "/pkg.Service/Method" 被拆为 Signature{Type: "pkg.Service", Method: "Method"}，
// 请求消息作为唯一参数。
//
// 追踪标识随调用传播：客户端把 xctx 中的 trace_id/span_id/request_id 写入 outgoing metadata
// （x-trace-id、x-span-id、x-request-id 与 W3C traceparent），服务端反向提取到 xctx。
package xgrpc
