package xlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Level 日志级别，数值与 slog.Level 相同。
type Level slog.Level

// 日志级别常量。
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

func (l Level) String() string { return slog.Level(l).String() }

// UnmarshalText 允许级别直接出现在配置结构体中。
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel 解析 debug/info/warn/warning/error，大小写不敏感。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("xlog: unknown level %q", s)
	}
}

// CallLevels 一次被观察调用在各阶段使用的日志级别。
//
// 取消不算故障：调用方主动放弃的调用默认按 Info 记录，
// 避免关停或超时重试期间 Warn 日志刷屏。
type CallLevels struct {
	Start    Level
	Success  Level
	Failure  Level
	Canceled Level
}

// DefaultCallLevels 进入 Debug，成功 Info，失败 Warn，取消 Info。
func DefaultCallLevels() CallLevels {
	return CallLevels{
		Start:    LevelDebug,
		Success:  LevelInfo,
		Failure:  LevelWarn,
		Canceled: LevelInfo,
	}
}

// Outcome 按调用结果选择级别。
func (c CallLevels) Outcome(err error) Level {
	switch {
	case err == nil:
		return c.Success
	case errors.Is(err, context.Canceled):
		return c.Canceled
	default:
		return c.Failure
	}
}

// LogAt 以 level 向 logger 写一条日志，非标准级别向下取整到最近的标准级别。
func LogAt(ctx context.Context, logger Logger, level Level, msg string, attrs ...slog.Attr) {
	switch {
	case level >= LevelError:
		logger.Error(ctx, msg, attrs...)
	case level >= LevelWarn:
		logger.Warn(ctx, msg, attrs...)
	case level >= LevelInfo:
		logger.Info(ctx, msg, attrs...)
	default:
		logger.Debug(ctx, msg, attrs...)
	}
}
