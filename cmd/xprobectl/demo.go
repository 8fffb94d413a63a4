package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xprobe/pkg/context/xctx"
	"github.com/omeyang/xprobe/pkg/intercept/xcall"
	"github.com/omeyang/xprobe/pkg/intercept/xfuture"
)

// errOutOfStock 演示服务的业务失败。
var errOutOfStock = errors.New("inventory: out of stock")

// inventory 被拦截的演示服务：同步查询与异步预留。
type inventory struct {
	latency   time.Duration
	failEvery int
}

func (s *inventory) shouldFail(n int) bool {
	return s.failEvery > 0 && n%s.failEvery == 0
}

func (s *inventory) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Lookup 同步查询库存。
func (s *inventory) Lookup(ctx context.Context, n int) (int, error) {
	if err := s.wait(ctx); err != nil {
		return 0, err
	}
	if s.shouldFail(n) {
		return 0, errOutOfStock
	}
	return n * 10, nil
}

// Reserve 异步预留，结果通过 Future 交付。
func (s *inventory) Reserve(ctx context.Context, n int) (*xfuture.Future[string], error) {
	return xfuture.Go(ctx, func(ctx context.Context) (string, error) {
		if err := s.wait(ctx); err != nil {
			return "", err
		}
		if s.shouldFail(n) {
			return "", errOutOfStock
		}
		return fmt.Sprintf("rsv-%d", n), nil
	}), nil
}

var (
	sigLookup  = xcall.Signature{Type: "Inventory", Method: "Lookup", Params: []string{"int"}}
	sigReserve = xcall.Signature{Type: "Inventory", Method: "Reserve", Params: []string{"int"}}
)

// demoResult 一批演示调用的结果统计。
type demoResult struct {
	Calls    int64
	Failures int64
}

func (r demoResult) String() string {
	return fmt.Sprintf("calls=%d failures=%d", r.Calls, r.Failures)
}

// runDemo 并发执行 calls 次调用：偶数次同步 Lookup，奇数次异步 Reserve。
//
// 业务失败只计数，不中断批次；ctx 取消时返回 ctx 的错误。
func runDemo(ctx context.Context, site *xcall.Site, c demoConfig) (demoResult, error) {
	svc := &inventory{latency: c.Latency, failEvery: c.FailEvery}
	lookup := xcall.Wrap1(site, sigLookup, svc.Lookup)
	reserve := xcall.WrapAsync1(site, sigReserve, svc.Reserve)

	var calls, failures atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Concurrency)
	for i := range c.Calls {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			callCtx, err := newTraceContext(gctx)
			if err != nil {
				return err
			}
			calls.Add(1)
			if i%2 == 0 {
				_, err = lookup(callCtx, i)
			} else {
				err = awaitReserve(callCtx, reserve, i)
			}
			switch {
			case err == nil:
			case errors.Is(err, errOutOfStock):
				failures.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return demoResult{Calls: calls.Load(), Failures: failures.Load()}, err
}

func awaitReserve(ctx context.Context, reserve func(context.Context, int) (*xfuture.Future[string], error), n int) error {
	fut, err := reserve(ctx, n)
	if err != nil {
		return err
	}
	// 回调按注册顺序执行：这里注册的回调在观察者的 After 之后运行。
	done := make(chan error, 1)
	fut.OnComplete(func(_ string, err error) { done <- err })
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newTraceContext 为每次演示调用生成独立的 trace id。
func newTraceContext(ctx context.Context) (context.Context, error) {
	traceID := strings.ReplaceAll(uuid.NewString(), "-", "")
	return xctx.WithTraceID(ctx, traceID)
}
