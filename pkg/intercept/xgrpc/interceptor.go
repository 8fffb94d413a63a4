package xgrpc

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
)

// SignatureOf 由 gRPC FullMethod 与请求消息构造签名。
func SignatureOf(fullMethod string, req any) xcall.Signature {
	name := strings.TrimPrefix(fullMethod, "/")
	sig := xcall.Signature{Method: name}
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		sig.Type, sig.Method = name[:i], name[i+1:]
	}
	if req != nil {
		sig.Params = []string{fmt.Sprintf("%T", req)}
	}
	return sig
}

// UnaryServerInterceptor 服务端一元拦截器。target 为空时使用调用点的 target。
//
// 先从 incoming metadata 提取追踪标识，再驱动观察者；handler 的返回值与错误原样返回。
func UnaryServerInterceptor(site *xcall.Site, target string) grpc.UnaryServerInterceptor {
	if target == "" {
		target = site.Target()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = ExtractIncoming(ctx)
		if !site.Active() {
			return handler(ctx, req)
		}
		d := xcall.NewDescriptor(ctx, target, SignatureOf(info.FullMethod, req), req)
		return xcall.Call(site, d, func(ctx context.Context) (any, error) {
			return handler(ctx, req)
		})
	}
}

// UnaryClientInterceptor 客户端一元拦截器。target 为空时使用连接的 target。
//
// 成功时观察者收到的结果是 reply 消息。
func UnaryClientInterceptor(site *xcall.Site, target string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = InjectOutgoing(ctx)
		if !site.Active() {
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		t := target
		if t == "" && cc != nil {
			t = cc.Target()
		}
		d := xcall.NewDescriptor(ctx, t, SignatureOf(method, req), req)
		_, err := xcall.Call(site, d, func(ctx context.Context) (any, error) {
			return reply, invoker(ctx, method, req, reply, cc, opts...)
		})
		return err
	}
}
