package xcall

import (
	"context"

	"github.com/omeyang/xprobe/pkg/intercept/xfuture"
)

// Builder 调用点配置构建器。
//
// Builder 为一次性使用：Build 之后不应继续修改。
type Builder struct {
	target    string
	observers []Observer
	filter    Filter
	reporter  Reporter
}

// NewBuilder 创建构建器。默认 Filter 为 ObserveAll，默认 Reporter 为 NewLogReporter(nil)。
func NewBuilder() *Builder {
	return &Builder{filter: observeAll}
}

// Target 设置目标标识，Wrap 系列函数以它构造 Descriptor。
func (b *Builder) Target(target string) *Builder {
	b.target = target
	return b
}

// Observe 追加观察者，顺序即 Before 的执行顺序。nil 被忽略。
func (b *Builder) Observe(observers ...Observer) *Builder {
	for _, o := range observers {
		if o != nil {
			b.observers = append(b.observers, o)
		}
	}
	return b
}

// Filter 设置调用级 Filter。nil 保持默认值。
func (b *Builder) Filter(f Filter) *Builder {
	if f != nil {
		b.filter = f
	}
	return b
}

// Reporter 设置观察者错误报告器。
func (b *Builder) Reporter(r Reporter) *Builder {
	b.reporter = r
	return b
}

// Build 构建调用点。
//
// 零观察者时返回直通调用点：Call 系列直接执行真实调用，Wrap 系列原样返回函数。
func (b *Builder) Build() *Site {
	dispatcher := NewDispatcher(b.reporter)
	// 调用点已在 Before 前求值 Filter，组合内部不再重复求值。
	root := Compose(b.observers, WithDispatcher(dispatcher))
	_, noop := root.(NoopObserver)
	return &Site{
		target:      b.target,
		root:        root,
		filter:      b.filter,
		dispatcher:  dispatcher,
		passThrough: noop,
	}
}

// Site 调用点：在真实调用前后驱动观察者。
//
// Site 构建后只读，可被任意多个 goroutine 并发使用。
type Site struct {
	target      string
	root        Observer
	filter      Filter
	dispatcher  *Dispatcher
	passThrough bool
}

// Target 返回目标标识。nil 调用点返回空串。
func (s *Site) Target() string {
	if s == nil {
		return ""
	}
	return s.target
}

// PassThrough 报告调用点是否为直通（没有任何观察者）。
func (s *Site) PassThrough() bool {
	return s == nil || s.passThrough
}

// Observer 返回组合后的根观察者。
func (s *Site) Observer() Observer {
	return s.root
}

// Descriptor 以调用点的 target 构造 Descriptor。
func (s *Site) Descriptor(ctx context.Context, sig Signature, args ...any) *Descriptor {
	return NewDescriptor(ctx, s.target, sig, args...)
}

// Active 轻量闸门：在构造 Descriptor 之前判断是否有观察者可能运行。
func (s *Site) Active() bool {
	return !s.PassThrough() && safeEnabled(s.root)
}

// begin 执行 Filter 与 Before，返回根观察者的槽。
//
// Dispatcher 本身不会 panic；这里再兜底一次，保证 Before 无论如何都不会阻止真实调用。
func (s *Site) begin(d *Descriptor) (slot Slot) {
	defer func() {
		if r := recover(); r != nil {
			slot = Absent()
		}
	}()
	return s.dispatcher.RunBeforeIfEnabled(s.root, s.filter, d)
}

func (s *Site) success(d *Descriptor, slot Slot, result any) {
	s.dispatcher.RunAfterSuccess(s.root, d, slot, result)
}

func (s *Site) failure(d *Descriptor, slot Slot, cause error) {
	s.dispatcher.RunAfterFailure(s.root, d, slot, cause)
}

// guard 在真实调用 panic 或 Goexit 时派发 AfterFailure。
//
// panic 以 *PanicError 作为 cause 派发后原值重新抛出；Goexit 以 ErrGoexit 派发。
func (s *Site) guard(d *Descriptor, slot Slot, returned *bool) {
	if *returned {
		return
	}
	r := recover()
	if r == nil {
		s.failure(d, slot, ErrGoexit)
		return
	}
	s.failure(d, slot, &PanicError{Value: r})
	panic(r)
}

func contextOf(d *Descriptor) context.Context {
	if d == nil {
		return context.Background()
	}
	return d.Context()
}

// Call 拦截一次同步调用。
//
// 返回值与错误与未拦截时完全一致（错误保持同一身份）。
// site 为 nil、直通、或 d 为 nil 时直接执行 fn。
func Call[R any](s *Site, d *Descriptor, fn func(ctx context.Context) (R, error)) (R, error) {
	if s.PassThrough() || d == nil {
		return fn(contextOf(d))
	}
	slot := s.begin(d)
	if slot.IsDisabled() {
		return fn(d.Context())
	}

	returned := false
	defer s.guard(d, slot, &returned)
	result, err := fn(d.Context())
	returned = true

	if err != nil {
		s.failure(d, slot, err)
	} else {
		s.success(d, slot, result)
	}
	return result, err
}

// CallAsync 拦截一次返回 Future 的调用。
//
// Before 同步执行；fn 同步失败时立即派发 AfterFailure；
// 否则在 Future 上挂接续体，Future 完成时在完成方 goroutine 上派发 After，恰好一次。
// 返回的 Future 与 fn 返回的是同一个对象，下游看到的成功/失败语义不变。
// fn 返回 (nil, nil) 时派发 ErrNilFuture，并返回以 ErrNilFuture 拒绝的 Future。
func CallAsync[R any](s *Site, d *Descriptor, fn func(ctx context.Context) (*xfuture.Future[R], error)) (*xfuture.Future[R], error) {
	if s.PassThrough() || d == nil {
		return fn(contextOf(d))
	}
	slot := s.begin(d)
	if slot.IsDisabled() {
		return fn(d.Context())
	}

	returned := false
	defer s.guard(d, slot, &returned)
	fut, err := fn(d.Context())
	returned = true

	switch {
	case err != nil:
		s.failure(d, slot, err)
	case fut == nil:
		s.failure(d, slot, ErrNilFuture)
		return xfuture.Rejected[R](ErrNilFuture), nil
	default:
		fut.OnComplete(func(v R, cause error) {
			if cause != nil {
				s.failure(d, slot, cause)
				return
			}
			s.success(d, slot, v)
		})
	}
	return fut, err
}

// Wrap 返回拦截后的无参函数。直通调用点原样返回 fn。
func Wrap[R any](s *Site, sig Signature, fn func(ctx context.Context) (R, error)) func(ctx context.Context) (R, error) {
	if s.PassThrough() {
		return fn
	}
	return func(ctx context.Context) (R, error) {
		if !s.Active() {
			return fn(ctx)
		}
		return Call(s, s.Descriptor(ctx, sig), fn)
	}
}

// Wrap1 返回拦截后的单参函数。
func Wrap1[A, R any](s *Site, sig Signature, fn func(ctx context.Context, a A) (R, error)) func(ctx context.Context, a A) (R, error) {
	if s.PassThrough() {
		return fn
	}
	return func(ctx context.Context, a A) (R, error) {
		if !s.Active() {
			return fn(ctx, a)
		}
		return Call(s, s.Descriptor(ctx, sig, a), func(ctx context.Context) (R, error) {
			return fn(ctx, a)
		})
	}
}

// Wrap2 返回拦截后的双参函数。
func Wrap2[A, B, R any](s *Site, sig Signature, fn func(ctx context.Context, a A, b B) (R, error)) func(ctx context.Context, a A, b B) (R, error) {
	if s.PassThrough() {
		return fn
	}
	return func(ctx context.Context, a A, b B) (R, error) {
		if !s.Active() {
			return fn(ctx, a, b)
		}
		return Call(s, s.Descriptor(ctx, sig, a, b), func(ctx context.Context) (R, error) {
			return fn(ctx, a, b)
		})
	}
}

// WrapAsync 返回拦截后的无参异步函数。
func WrapAsync[R any](s *Site, sig Signature, fn func(ctx context.Context) (*xfuture.Future[R], error)) func(ctx context.Context) (*xfuture.Future[R], error) {
	if s.PassThrough() {
		return fn
	}
	return func(ctx context.Context) (*xfuture.Future[R], error) {
		if !s.Active() {
			return fn(ctx)
		}
		return CallAsync(s, s.Descriptor(ctx, sig), fn)
	}
}

// WrapAsync1 返回拦截后的单参异步函数。
func WrapAsync1[A, R any](s *Site, sig Signature, fn func(ctx context.Context, a A) (*xfuture.Future[R], error)) func(ctx context.Context, a A) (*xfuture.Future[R], error) {
	if s.PassThrough() {
		return fn
	}
	return func(ctx context.Context, a A) (*xfuture.Future[R], error) {
		if !s.Active() {
			return fn(ctx, a)
		}
		return CallAsync(s, s.Descriptor(ctx, sig, a), func(ctx context.Context) (*xfuture.Future[R], error) {
			return fn(ctx, a)
		})
	}
}
