package xobserve

import (
	"fmt"
	"log/slog"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

// Logging xlog 日志观察者，各阶段级别由 xlog.CallLevels 决定
// （默认进入 Debug，成功 Info，失败 Warn，取消 Info）。
type Logging struct {
	gate
	logger  xlog.Logger
	logArgs bool
	levels  xlog.CallLevels
}

// NewLogging 创建日志观察者。
func NewLogging(opts ...Option) *Logging {
	cfg := newConfig("logging", opts)
	logger := cfg.logger
	if logger == nil {
		logger = xlog.Default()
	}
	return &Logging{
		gate:    gate{sw: cfg.sw, name: cfg.name},
		logger:  logger,
		logArgs: cfg.logArgs,
		levels:  cfg.callLevels,
	}
}

func (l *Logging) callAttrs(d *xcall.Descriptor, extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, 4+len(extra))
	attrs = append(attrs,
		xlog.Target(d.Target()),
		xlog.Method(d.Signature().String()),
		xlog.CallID(d.ID()),
	)
	if l.logArgs {
		attrs = append(attrs, slog.String("args", fmt.Sprint(d.Args()...)))
	}
	return append(attrs, extra...)
}

// Before 记录调用开始。
func (l *Logging) Before(d *xcall.Descriptor) (any, error) {
	xlog.LogAt(d.Context(), l.logger, l.levels.Start, "call started", l.callAttrs(d)...)
	return d, nil
}

// AfterSuccess 记录调用成功与耗时。
func (l *Logging) AfterSuccess(state, _ any) error {
	d, ok := state.(*xcall.Descriptor)
	if !ok || d == nil {
		return ErrUnexpectedState
	}
	xlog.LogAt(d.Context(), l.logger, l.levels.Success, "call finished",
		l.callAttrs(d, xlog.Status(StatusOK), xlog.Duration(d.Elapsed()))...)
	return nil
}

// AfterFailure 记录调用失败、原因与耗时。
func (l *Logging) AfterFailure(state any, cause error) error {
	d, ok := state.(*xcall.Descriptor)
	if !ok || d == nil {
		return ErrUnexpectedState
	}
	xlog.LogAt(d.Context(), l.logger, l.levels.Outcome(cause), "call failed",
		l.callAttrs(d, xlog.Status(statusOf(cause)), xlog.Duration(d.Elapsed()), xlog.Err(cause))...)
	return nil
}

var _ xcall.Observer = (*Logging)(nil)
