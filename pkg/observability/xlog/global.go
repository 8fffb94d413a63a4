package xlog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// 全局 Logger 面向 CLI 与小工具，库代码优先显式注入 Logger。
var (
	globalLogger atomic.Pointer[LoggerWithLevel]
	globalMu     sync.Mutex
)

func defaultLogger() LoggerWithLevel {
	globalMu.Lock()
	defer globalMu.Unlock()
	if l := globalLogger.Load(); l != nil {
		return *l
	}

	logger, _, err := New().Build()
	if err != nil {
		// 默认参数不应失败；失败则降级为最小可用 logger，构造不 panic。
		fmt.Fprintf(os.Stderr, "xlog: failed to build default logger: %v, using fallback\n", err)
		level := new(slog.LevelVar)
		logger = newLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}), level, false, nil)
	}
	globalLogger.Store(&logger)
	return logger
}

// Default 返回全局 Logger，首次调用时惰性创建（stderr、Info、text）。
func Default() LoggerWithLevel {
	if l := globalLogger.Load(); l != nil {
		return *l
	}
	return defaultLogger()
}

// SetDefault 替换全局 Logger。nil 被忽略。
func SetDefault(l LoggerWithLevel) {
	if l == nil {
		return
	}
	globalLogger.Store(&l)
}

// ResetDefault 清除全局 Logger，下一次 Default 重新创建。仅用于测试。
func ResetDefault() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger.Store(nil)
}

//go:noinline
func globalLog(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	l := Default()
	if x, ok := l.(*xlogger); ok {
		x.logWithSkip(ctx, level, msg, attrs, 1)
		return
	}
	switch level {
	case slog.LevelDebug:
		l.Debug(ctx, msg, attrs...)
	case slog.LevelWarn:
		l.Warn(ctx, msg, attrs...)
	case slog.LevelError:
		l.Error(ctx, msg, attrs...)
	default:
		l.Info(ctx, msg, attrs...)
	}
}

// Debug 使用全局 Logger 记录 Debug 日志
func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(ctx, slog.LevelDebug, msg, attrs)
}

// Info 使用全局 Logger 记录 Info 日志
func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(ctx, slog.LevelInfo, msg, attrs)
}

// Warn 使用全局 Logger 记录 Warn 日志
func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(ctx, slog.LevelWarn, msg, attrs)
}

// Error 使用全局 Logger 记录 Error 日志
func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	globalLog(ctx, slog.LevelError, msg, attrs)
}
