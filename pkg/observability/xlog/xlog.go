package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口。
//
// 所有方法强制传入 context，保证追踪字段能被注入；只接受 slog.Attr，避免隐式 key-value 转换。
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回带固定属性的派生 Logger，与父级共享级别。
	With(attrs ...slog.Attr) Logger

	// WithGroup 返回带分组的派生 Logger。
	WithGroup(name string) Logger
}

// Leveler 动态级别控制，与 Logger 分离以保持日志接口最小。
type Leveler interface {
	SetLevel(level Level)
	GetLevel() Level
	// Enabled 在构造昂贵属性前检查级别。
	Enabled(ctx context.Context, level Level) bool
}

// LoggerWithLevel Build 的返回类型。
type LoggerWithLevel interface {
	Logger
	Leveler
}
