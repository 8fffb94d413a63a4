package xcall

import (
	"errors"
	"fmt"
)

// 错误分类哨兵，配合 errors.Is 判断 *ObserverError 的类别。
var (
	// ErrObserverBefore 观察者 Before 阶段失败。
	ErrObserverBefore = errors.New("xcall: observer before failed")

	// ErrObserverAfter 观察者 After 阶段失败。
	ErrObserverAfter = errors.New("xcall: observer after failed")

	// ErrMalformedContext After 收到的状态不是匹配的 Before 产生的。
	// 这是调用点接线缺陷，不是运行期可恢复的情况。
	ErrMalformedContext = errors.New("xcall: malformed call context")

	// ErrDoubleCompletion 同一次调用的 After 被执行了两次。
	ErrDoubleCompletion = errors.New("xcall: call completed twice")

	// ErrNilFuture 异步调用返回了 nil Future 且没有错误。
	ErrNilFuture = errors.New("xcall: async call returned nil future")

	// ErrGoexit 真实调用通过 runtime.Goexit 退出，没有返回值。
	ErrGoexit = errors.New("xcall: call exited via runtime.Goexit")
)

// Kind 观察者错误类别。
type Kind int

const (
	// KindBefore Before 阶段错误。
	KindBefore Kind = iota
	// KindAfter After 阶段错误。
	KindAfter
	// KindMalformed 状态不匹配或重复完成。
	KindMalformed
)

// String 返回类别名称。
func (k Kind) String() string {
	switch k {
	case KindBefore:
		return "before"
	case KindAfter:
		return "after"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindBefore:
		return ErrObserverBefore
	case KindAfter:
		return ErrObserverAfter
	default:
		return ErrMalformedContext
	}
}

// ObserverError 观察者隔离层捕获的错误，只用于报告，永不传播给调用方。
type ObserverError struct {
	// Kind 错误类别。
	Kind Kind
	// Observer 观察者标识。
	Observer string
	// Call 相关调用，可能为 nil。
	Call *Descriptor
	// Err 原始错误。
	Err error
}

func (e *ObserverError) Error() string {
	call := "<unknown>"
	if e.Call != nil {
		call = e.Call.String()
	}
	return fmt.Sprintf("xcall: observer %s %s failed on %s: %v", e.Observer, e.Kind, call, e.Err)
}

// Unwrap 返回原始错误。
func (e *ObserverError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrObserverBefore) 等类别判断成立。
func (e *ObserverError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// PanicError 包装被恢复的 panic 值。
//
// 观察者 panic 时作为 ObserverError.Err；真实调用 panic 时作为 AfterFailure 的 cause，
// 随后原 panic 值会被重新抛出。
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xcall: panic: %v", e.Value)
}

// Unwrap 在 panic 值本身是 error 时返回它。
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
