package xrun

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrSignal 因收到系统信号而终止，配合 errors.Is 使用。
	ErrSignal = errors.New("xrun: received signal")

	// ErrNilFunc 任务函数为 nil。
	ErrNilFunc = errors.New("xrun: nil task func")

	// ErrNilServer HTTPServer 收到 nil 服务器或监听器。
	ErrNilServer = errors.New("xrun: nil server or listener")

	// ErrInvalidInterval Ticker 间隔必须为正。
	ErrInvalidInterval = errors.New("xrun: interval must be positive")
)

// SignalError 触发终止的信号。
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("xrun: received signal %v", e.Signal)
}

// Is 使 errors.Is(err, ErrSignal) 成立。
func (e *SignalError) Is(target error) bool {
	return target == ErrSignal
}
