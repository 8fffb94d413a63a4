package xrun

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

// Ticker 周期执行 fn 的任务。immediate 为 true 时启动即执行一次。
//
// fn 返回错误时任务结束并返回该错误；ctx 取消时返回 ctx.Err()。
func Ticker(interval time.Duration, immediate bool, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		if fn == nil {
			return ErrNilFunc
		}
		if immediate {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx); err != nil {
				return err
			}
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					return err
				}
			}
		}
	}
}

// Server 可在监听器上服务并优雅关闭的服务器，*http.Server 满足此接口。
type Server interface {
	Serve(ln net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServer 在 ln 上运行 srv，ctx 取消后在 shutdownTimeout 内优雅关闭。
//
// shutdownTimeout <= 0 表示等待所有在途请求结束。
// 外部直接关闭服务器时任务返回 nil。
func HTTPServer(srv Server, ln net.Listener, shutdownTimeout time.Duration) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if srv == nil || ln == nil {
			return ErrNilServer
		}
		shutdownErr := make(chan error, 1)
		served := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				sctx := context.WithoutCancel(ctx)
				if shutdownTimeout > 0 {
					var cancel context.CancelFunc
					sctx, cancel = context.WithTimeout(sctx, shutdownTimeout)
					defer cancel()
				}
				shutdownErr <- srv.Shutdown(sctx)
			case <-served:
			}
		}()

		err := srv.Serve(ln)
		if !errors.Is(err, http.ErrServerClosed) {
			close(served)
			return err
		}
		select {
		case err := <-shutdownErr:
			return err
		case <-ctx.Done():
			return <-shutdownErr
		default:
			close(served)
			return nil
		}
	}
}
