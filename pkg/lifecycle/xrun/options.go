package xrun

import (
	"os"
	"syscall"

	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

// Option Group 配置选项。
type Option func(*groupOptions)

type groupOptions struct {
	logger          xlog.Logger
	name            string
	signals         []os.Signal
	noSignalHandler bool
}

func defaultOptions() *groupOptions {
	return &groupOptions{name: "xrun"}
}

// DefaultSignals 返回 Run 默认监听的信号：SIGINT、SIGTERM、SIGQUIT。
func DefaultSignals() []os.Signal {
	return []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT}
}

// WithLogger 记录任务启停的日志器，默认 xlog.Default()。
func WithLogger(logger xlog.Logger) Option {
	return func(o *groupOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithName Group 名称，出现在日志中。
func WithName(name string) Option {
	return func(o *groupOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithSignals 覆盖 Run 监听的信号。空列表使用 DefaultSignals。
func WithSignals(signals ...os.Signal) Option {
	copied := append([]os.Signal(nil), signals...)
	return func(o *groupOptions) {
		o.signals = copied
	}
}

// WithoutSignalHandler 禁止 Run 注册信号监听。
func WithoutSignalHandler() Option {
	return func(o *groupOptions) {
		o.noSignalHandler = true
	}
}
