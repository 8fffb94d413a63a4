package xfuture

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrCanceled 表示 Future 被 Promise.Cancel 取消，满足 errors.Is(err, context.Canceled)。
	ErrCanceled = fmt.Errorf("xfuture: canceled: %w", context.Canceled)

	// ErrNilFunc 表示 Go 收到了 nil 函数。
	ErrNilFunc = errors.New("xfuture: nil func")

	// ErrNilContext 表示传入的 context 为 nil。
	ErrNilContext = errors.New("xfuture: nil context")
)

// Future 表示一个尚未（或已经）完成的异步结果。
//
// Future 并发安全，可以被多个 goroutine 同时等待或注册回调。
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	value     T
	err       error
	completed bool
	callbacks []func(T, error)
}

// Promise 是 Future 的写端，只能完成一次。
type Promise[T any] struct {
	f *Future[T]
}

// New 创建一对关联的 Future 与 Promise。
func New[T any]() (*Future[T], *Promise[T]) {
	f := &Future[T]{done: make(chan struct{})}
	return f, &Promise[T]{f: f}
}

// Resolved 返回一个已成功完成的 Future。
func Resolved[T any](v T) *Future[T] {
	f, p := New[T]()
	p.Resolve(v)
	return f
}

// Rejected 返回一个已失败的 Future。
func Rejected[T any](err error) *Future[T] {
	f, p := New[T]()
	p.Reject(err)
	return f
}

// Go 在新 goroutine 中执行 fn，返回其结果的 Future。
//
// fn 发生 panic 时 Future 以 *PanicError 失败，panic 不会扩散到进程。
// 完成后由回调抛出的 panic 不属于 fn，照常在该 goroutine 上崩溃。
// ctx 在 fn 开始前已取消时，Future 直接以 ctx.Err() 失败。
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	if ctx == nil {
		return Rejected[T](ErrNilContext)
	}
	if fn == nil {
		return Rejected[T](ErrNilFunc)
	}
	f, p := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil && !p.Reject(&PanicError{Value: r}) {
				panic(r)
			}
		}()
		if err := ctx.Err(); err != nil {
			p.Reject(err)
			return
		}
		v, err := fn(ctx)
		p.Complete(v, err)
	}()
	return f
}

// FromChannel 将一个只发送一次结果的 channel 适配为 Future。
//
// channel 在未发送值的情况下被关闭时，Future 以 ErrClosedChannel 失败。
func FromChannel[T any](ch <-chan T) *Future[T] {
	f, p := New[T]()
	go func() {
		v, ok := <-ch
		if !ok {
			p.Reject(ErrClosedChannel)
			return
		}
		p.Resolve(v)
	}()
	return f
}

// ErrClosedChannel 表示 FromChannel 的源 channel 在发送结果前被关闭。
var ErrClosedChannel = errors.New("xfuture: channel closed without value")

// Resolve 以成功值完成 Future。重复完成时返回 false 且不产生任何效果。
func (p *Promise[T]) Resolve(v T) bool {
	return p.f.complete(v, nil)
}

// Reject 以错误完成 Future。err 为 nil 时按 ErrNilRejection 处理，
// 保证失败分支始终携带非 nil 错误。
func (p *Promise[T]) Reject(err error) bool {
	if err == nil {
		err = ErrNilRejection
	}
	var zero T
	return p.f.complete(zero, err)
}

// ErrNilRejection 表示 Reject 收到了 nil 错误。
var ErrNilRejection = errors.New("xfuture: rejected with nil error")

// Complete 按 err 是否为 nil 选择 Resolve 或 Reject。
func (p *Promise[T]) Complete(v T, err error) bool {
	if err != nil {
		return p.Reject(err)
	}
	return p.Resolve(v)
}

// Cancel 以取消错误完成 Future。cause 非 nil 时会一并包装。
func (p *Promise[T]) Cancel(cause error) bool {
	if cause == nil {
		return p.Reject(ErrCanceled)
	}
	return p.Reject(fmt.Errorf("%w: %w", ErrCanceled, cause))
}

// Future 返回关联的 Future。
func (p *Promise[T]) Future() *Future[T] {
	return p.f
}

func (f *Future[T]) complete(v T, err error) bool {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return false
	}
	f.value = v
	f.err = err
	f.completed = true
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	// 回调在锁外执行，允许回调内部再次访问 Future。
	// 单个回调 panic 不影响后续回调；全部执行完后在完成方 goroutine 上重新抛出第一个 panic。
	var first any
	for _, cb := range callbacks {
		if r := runCallback(cb, v, err); r != nil && first == nil {
			first = r
		}
	}
	if first != nil {
		panic(first)
	}
	return true
}

func runCallback[T any](cb func(T, error), v T, err error) (recovered any) {
	defer func() { recovered = recover() }()
	cb(v, err)
	return nil
}

// OnComplete 注册完成回调。
//
// 每个回调恰好执行一次：Future 已完成时立即在当前 goroutine 执行，
// 否则在完成 Promise 的 goroutine 上按注册顺序执行。nil 回调被忽略。
// 回调 panic 不会跳过其余回调，但会在所有回调执行完后传播给完成方。
func (f *Future[T]) OnComplete(cb func(T, error)) {
	if cb == nil {
		return
	}
	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	v, err := f.value, f.err
	f.mu.Unlock()
	cb(v, err)
}

// Done 返回在 Future 完成时关闭的 channel。
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// IsDone 报告 Future 是否已完成。
func (f *Future[T]) IsDone() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Await 阻塞直到 Future 完成或 ctx 结束。
//
// ctx 结束只影响本次等待，不会取消 Future 本身。
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if ctx == nil {
		return zero, ErrNilContext
	}
	select {
	case <-f.done:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// PanicError 包装 Go 中 fn 的 panic 值。
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("xfuture: panic: %v", e.Value)
}

// Unwrap 在 panic 值本身是 error 时返回它。
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
