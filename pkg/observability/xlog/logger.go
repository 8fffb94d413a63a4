package xlog

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
)

var (
	_ Logger          = (*xlogger)(nil)
	_ LoggerWithLevel = (*xlogger)(nil)
)

// xlogger Logger 的实现。派生 logger 共享级别、错误计数与递归保护标记。
type xlogger struct {
	handler    slog.Handler
	levelVar   *slog.LevelVar
	addSource  bool
	onError    func(error)
	errorCount *atomic.Uint64
	inOnError  *atomic.Bool
}

func newLogger(handler slog.Handler, levelVar *slog.LevelVar, addSource bool, onError func(error)) *xlogger {
	return &xlogger{
		handler:    handler,
		levelVar:   levelVar,
		addSource:  addSource,
		onError:    onError,
		errorCount: new(atomic.Uint64),
		inOnError:  new(atomic.Bool),
	}
}

func (l *xlogger) derive(h slog.Handler) *xlogger {
	d := *l
	d.handler = h
	return &d
}

// logWithSkip extraSkip 为调用链上额外的中间帧数（实例方法与全局函数各为 1）。
//
//go:noinline
func (l *xlogger) logWithSkip(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr, extraSkip int) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.handler.Enabled(ctx, level) {
		return
	}

	// runtime.Callers 开销不小，仅在 AddSource 时捕获
	var pc uintptr
	if l.addSource {
		var pcs [1]uintptr
		runtime.Callers(3+extraSkip, pcs[:])
		pc = pcs[0]
	}

	r := slog.NewRecord(time.Now(), level, msg, pc)
	r.AddAttrs(attrs...)
	if err := l.handler.Handle(ctx, r); err != nil {
		l.handleError(err)
	}
}

//go:noinline
func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	l.logWithSkip(ctx, level, msg, attrs, 1)
}

// handleError 所有写入错误计数；onError 回调带递归保护与 panic 隔离，尽力而为。
func (l *xlogger) handleError(err error) {
	l.errorCount.Add(1)
	if l.onError == nil || !l.inOnError.CompareAndSwap(false, true) {
		return
	}
	defer l.inOnError.Store(false)
	defer func() {
		if r := recover(); r != nil {
			l.errorCount.Add(1)
		}
	}()
	l.onError(err)
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return l.derive(l.handler.WithAttrs(attrs))
}

// WithGroup 返回带分组的派生 Logger
func (l *xlogger) WithGroup(name string) Logger {
	if name == "" {
		return l
	}
	return l.derive(l.handler.WithGroup(name))
}

// SetLevel 动态设置级别，派生 logger 同步生效。
func (l *xlogger) SetLevel(level Level) {
	l.levelVar.Set(slog.Level(level))
}

// GetLevel 获取当前级别。
func (l *xlogger) GetLevel() Level {
	return Level(l.levelVar.Level())
}

// Enabled 检查指定级别是否启用。
func (l *xlogger) Enabled(ctx context.Context, level Level) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	return l.handler.Enabled(ctx, slog.Level(level))
}

// ErrorCount 返回写入失败次数（含 onError 回调 panic），用于监控。
func ErrorCount(l Logger) uint64 {
	if x, ok := l.(*xlogger); ok {
		return x.errorCount.Load()
	}
	return 0
}
