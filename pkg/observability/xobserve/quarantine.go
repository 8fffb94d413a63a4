package xobserve

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
)

// QuarantineOption 隔离器选项。
type QuarantineOption func(*gobreaker.Settings)

// WithTripAfter 连续失败 n 次后隔离，默认 5。
func WithTripAfter(n uint32) QuarantineOption {
	return func(st *gobreaker.Settings) {
		if n > 0 {
			st.ReadyToTrip = func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= n
			}
		}
	}
}

// WithCooldown 隔离持续时间，之后进入半开状态试探，默认 30s。
func WithCooldown(d time.Duration) QuarantineOption {
	return func(st *gobreaker.Settings) {
		if d > 0 {
			st.Timeout = d
		}
	}
}

// WithProbes 半开状态允许的试探调用数，默认 1。
func WithProbes(n uint32) QuarantineOption {
	return func(st *gobreaker.Settings) {
		if n > 0 {
			st.MaxRequests = n
		}
	}
}

// WithStateChange 隔离状态变更回调。
func WithStateChange(fn func(name string, from, to gobreaker.State)) QuarantineOption {
	return func(st *gobreaker.Settings) {
		st.OnStateChange = fn
	}
}

// Quarantined 包装一个观察者，观察者自身的连续失败（返回错误或 panic）触发熔断。
//
// 熔断打开期间 Enabled 返回 false，调用点不再为它执行 Before；
// 冷却结束后进入半开状态，试探成功即恢复。
// 一次 Before 与其对应的 After 计为一次请求。
type Quarantined struct {
	inner xcall.Observer
	name  string
	cb    *gobreaker.TwoStepCircuitBreaker[struct{}]
}

type quarantineState struct {
	inner any
	done  func(error)
}

// Quarantine 创建隔离包装。
func Quarantine(o xcall.Observer, opts ...QuarantineOption) (*Quarantined, error) {
	if o == nil {
		return nil, ErrNilObserver
	}
	name := "quarantine(" + xcall.ObserverName(o) + ")"
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&st)
		}
	}
	return &Quarantined{
		inner: o,
		name:  name,
		cb:    gobreaker.NewTwoStepCircuitBreaker[struct{}](st),
	}, nil
}

// Name 返回 quarantine(内层名称)。
func (q *Quarantined) Name() string { return q.name }

// State 当前熔断状态。
func (q *Quarantined) State() gobreaker.State { return q.cb.State() }

// Inner 返回被包装的观察者。
func (q *Quarantined) Inner() xcall.Observer { return q.inner }

// Enabled 熔断打开时为 false，否则取内层观察者的值。
func (q *Quarantined) Enabled() bool {
	return q.cb.State() != gobreaker.StateOpen && q.inner.Enabled()
}

// Before 申请许可并执行内层 Before。
//
// 半开状态下超出试探配额的调用静默跳过：返回 nil 状态，对应的 After 不会触达内层观察者。
func (q *Quarantined) Before(d *xcall.Descriptor) (any, error) {
	done, err := q.cb.Allow()
	if err != nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			done(&xcall.PanicError{Value: r})
			panic(r)
		}
	}()
	inner, err := q.inner.Before(d)
	if err != nil {
		done(err)
		return nil, err
	}
	return &quarantineState{inner: inner, done: done}, nil
}

// AfterSuccess 执行内层 AfterSuccess 并上报结果。
func (q *Quarantined) AfterSuccess(state, result any) error {
	return q.after(state, func(inner any) error {
		return q.inner.AfterSuccess(inner, result)
	})
}

// AfterFailure 执行内层 AfterFailure 并上报结果。真实调用的失败不计入熔断。
func (q *Quarantined) AfterFailure(state any, cause error) error {
	return q.after(state, func(inner any) error {
		return q.inner.AfterFailure(inner, cause)
	})
}

func (q *Quarantined) after(state any, call func(inner any) error) (err error) {
	if state == nil {
		return nil
	}
	s, ok := state.(*quarantineState)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnexpectedState, state)
	}
	defer func() {
		if r := recover(); r != nil {
			s.done(&xcall.PanicError{Value: r})
			panic(r)
		}
	}()
	err = call(s.inner)
	s.done(err)
	return err
}

var _ xcall.Observer = (*Quarantined)(nil)
