package xrun

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

// Group 并发运行一组任务并协调关闭。
//
// Go、GoWithName、Cancel 可并发调用；Wait 只应调用一次。
type Group struct {
	eg       *errgroup.Group
	ctx      context.Context
	causeCtx context.Context
	cancel   context.CancelCauseFunc
	logger   xlog.Logger
	name     string
	opts     *groupOptions
}

// NewGroup 创建 Group，返回的 context 在任一任务失败或 Cancel 时取消。
func NewGroup(ctx context.Context, opts ...Option) (*Group, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	logger := o.logger
	if logger == nil {
		logger = xlog.Default()
	}

	causeCtx, cancel := context.WithCancelCause(ctx)
	eg, egCtx := errgroup.WithContext(causeCtx)
	return &Group{
		eg:       eg,
		ctx:      egCtx,
		causeCtx: causeCtx,
		cancel:   cancel,
		logger:   logger,
		name:     o.name,
		opts:     o,
	}, egCtx
}

// Go 启动任务。fn 应在 ctx 取消后尽快返回。
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		return fn(g.ctx)
	})
}

// GoWithName 同 Go，并记录任务的启停。
func (g *Group) GoWithName(name string, fn func(ctx context.Context) error) {
	g.eg.Go(func() error {
		if fn == nil {
			return ErrNilFunc
		}
		attrs := []slog.Attr{slog.String("group", g.name), slog.String("task", name)}
		g.logger.Debug(g.ctx, "task starting", attrs...)
		err := fn(g.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn(g.ctx, "task exited with error", append(attrs, xlog.Err(err))...)
		} else {
			g.logger.Debug(g.ctx, "task stopped", attrs...)
		}
		return err
	})
}

// Wait 等待所有任务结束。
//
// Group 被取消时，任务返回的 context.Canceled 被过滤；
// 若取消带有显式原因（Cancel(cause) 或信号），返回该原因。
func (g *Group) Wait() error {
	defer g.cancel(nil)

	err := g.eg.Wait()
	cause := g.explicitCause()
	switch {
	case errors.Is(err, context.Canceled) && g.causeCtx.Err() != nil:
		return cause
	case err == nil:
		return cause
	default:
		return err
	}
}

func (g *Group) explicitCause() error {
	if g.causeCtx.Err() == nil {
		return nil
	}
	cause := context.Cause(g.causeCtx)
	if cause == nil || errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

// Cancel 取消所有任务，cause 将由 Wait 返回（nil 表示正常结束）。
func (g *Group) Cancel(cause error) {
	g.cancel(cause)
}

// Context 返回 Group 的 context。
func (g *Group) Context() context.Context {
	return g.ctx
}

// Run 创建 Group、注册信号监听并运行 tasks，返回 Wait 的结果。
//
// 收到信号时返回 *SignalError，可用 errors.Is(err, ErrSignal) 判断。
func Run(ctx context.Context, opts []Option, tasks ...func(ctx context.Context) error) error {
	g, _ := NewGroup(ctx, opts...)
	if !g.opts.noSignalHandler {
		signals := g.opts.signals
		if len(signals) == 0 {
			signals = DefaultSignals()
		}
		g.Go(func(ctx context.Context) error {
			ch := make(chan os.Signal, 1)
			signal.Notify(ch, signals...)
			defer signal.Stop(ch)
			return g.awaitSignal(ctx, ch)
		})
	}
	for _, task := range tasks {
		g.Go(task)
	}
	return g.Wait()
}

func (g *Group) awaitSignal(ctx context.Context, ch <-chan os.Signal) error {
	select {
	case sig := <-ch:
		g.logger.Info(ctx, "received signal",
			slog.String("group", g.name),
			slog.String("signal", sig.String()),
		)
		g.cancel(&SignalError{Signal: sig})
		return nil
	case <-ctx.Done():
		return nil
	}
}
