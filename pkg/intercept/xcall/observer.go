package xcall

import "fmt"

//go:generate mockgen -destination=mock_observer_test.go -package=xcall_test github.com/omeyang/xprobe/pkg/intercept/xcall Observer

// Observer 观察者契约。
//
// 引擎保证：
//   - Enabled 返回 false 或 Filter 拒绝时，Before 与 After 都不会被调用
//   - Before 正常返回（即使状态为 nil）时，AfterSuccess 与 AfterFailure 恰好调用其一，
//     state 为 Before 返回的值
//   - Before 失败（返回错误或 panic）时，After 不会被调用
//
// 所有方法都可能返回错误或 panic，隔离由 [Dispatcher] 负责，观察者自身无需兜底。
// 同一观察者会被并发调用，内部共享状态需要自行保证并发安全。
type Observer interface {
	// Enabled 报告观察者当前是否启用。必须廉价且无副作用。
	Enabled() bool

	// Before 在真实调用前执行，返回的状态原样交还给 After。
	Before(d *Descriptor) (any, error)

	// AfterSuccess 在真实调用成功后执行。
	AfterSuccess(state any, result any) error

	// AfterFailure 在真实调用失败后执行。
	AfterFailure(state any, cause error) error
}

// Named 可选接口：提供观察者在错误报告中的标识。
type Named interface {
	Name() string
}

// ObserverName 返回观察者标识：实现了 [Named] 时使用 Name()，否则使用类型名。
func ObserverName(o Observer) string {
	if n, ok := o.(Named); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", o)
}

// NoopObserver 空观察者，零观察者组合时返回它。
type NoopObserver struct{}

// Enabled 始终返回 false，调用点据此走直通路径。
func (NoopObserver) Enabled() bool { return false }

// Before 空实现。
func (NoopObserver) Before(*Descriptor) (any, error) { return nil, nil }

// AfterSuccess 空实现。
func (NoopObserver) AfterSuccess(any, any) error { return nil }

// AfterFailure 空实现。
func (NoopObserver) AfterFailure(any, error) error { return nil }

// Name 返回 "noop"。
func (NoopObserver) Name() string { return "noop" }

// ObserverFuncs 将函数适配为 Observer，nil 字段视为空实现。
//
// EnabledFunc 为 nil 时视为启用。
type ObserverFuncs struct {
	ObserverName string
	EnabledFunc  func() bool
	BeforeFunc   func(d *Descriptor) (any, error)
	SuccessFunc  func(state any, result any) error
	FailureFunc  func(state any, cause error) error
}

// Enabled 实现 Observer。
func (f *ObserverFuncs) Enabled() bool {
	if f.EnabledFunc == nil {
		return true
	}
	return f.EnabledFunc()
}

// Before 实现 Observer。
func (f *ObserverFuncs) Before(d *Descriptor) (any, error) {
	if f.BeforeFunc == nil {
		return nil, nil
	}
	return f.BeforeFunc(d)
}

// AfterSuccess 实现 Observer。
func (f *ObserverFuncs) AfterSuccess(state any, result any) error {
	if f.SuccessFunc == nil {
		return nil
	}
	return f.SuccessFunc(state, result)
}

// AfterFailure 实现 Observer。
func (f *ObserverFuncs) AfterFailure(state any, cause error) error {
	if f.FailureFunc == nil {
		return nil
	}
	return f.FailureFunc(state, cause)
}

// Name 实现 Named。
func (f *ObserverFuncs) Name() string {
	return f.ObserverName
}

var (
	_ Observer = NoopObserver{}
	_ Observer = (*ObserverFuncs)(nil)
	_ Named    = (*ObserverFuncs)(nil)
)
