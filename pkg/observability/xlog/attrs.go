package xlog

import (
	"log/slog"
	"time"
)

// 标准字段名。
const (
	KeyError    = "error"
	KeyDuration = "duration"
	KeyTarget   = "target"
	KeyMethod   = "method"
	KeyCallID   = "call_id"
	KeyObserver = "observer"
	KeyPhase    = "phase"
	KeyStatus   = "status"
)

// Err 错误属性。err 为 nil 时返回空属性，slog 会忽略它。
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Duration 耗时属性，人类可读格式（如 "1.5ms"）。
func Duration(d time.Duration) slog.Attr {
	return slog.String(KeyDuration, d.String())
}

// Target 被调用目标。
func Target(name string) slog.Attr {
	return slog.String(KeyTarget, name)
}

// Method 被调用方法签名。
func Method(sig string) slog.Attr {
	return slog.String(KeyMethod, sig)
}

// CallID 调用唯一标识。
func CallID(id string) slog.Attr {
	return slog.String(KeyCallID, id)
}

// Observer 观察者标识。
func Observer(name string) slog.Attr {
	return slog.String(KeyObserver, name)
}

// Phase 观察阶段（before / after / malformed）。
func Phase(p string) slog.Attr {
	return slog.String(KeyPhase, p)
}

// Status 调用结果（ok / error）。
func Status(s string) slog.Attr {
	return slog.String(KeyStatus, s)
}
