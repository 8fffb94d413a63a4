package xcall

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
)

// 单次调用的组合状态机：NotStarted → BeforeRan → (AfterSuccess | AfterFailure) → Done。
const (
	phaseNotStarted uint32 = iota
	phaseBeforeRan
	phaseAfterSuccess
	phaseAfterFailure
	phaseDone
)

// CompositeOption Compose 配置选项。
type CompositeOption func(*compositeConfig)

type compositeConfig struct {
	filter     Filter
	dispatcher *Dispatcher
}

// WithCompositeFilter 设置每个观察者 Before 前求值的 Filter，默认 ObserveAll。
func WithCompositeFilter(f Filter) CompositeOption {
	return func(c *compositeConfig) {
		if f != nil {
			c.filter = f
		}
	}
}

// WithDispatcher 设置执行观察者的 Dispatcher，默认 NewDispatcher(nil)。
func WithDispatcher(d *Dispatcher) CompositeOption {
	return func(c *compositeConfig) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// Compose 将有序观察者列表组合为一个观察者。
//
// 退化情况：
//   - 零个观察者：返回 NoopObserver，避免每次调用分配状态向量
//   - 一个观察者：原样返回该观察者，不做包装
//
// nil 观察者会被忽略。列表在组合时复制，之后只读。
func Compose(observers []Observer, opts ...CompositeOption) Observer {
	list := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			list = append(list, o)
		}
	}
	switch len(list) {
	case 0:
		return NoopObserver{}
	case 1:
		return list[0]
	}
	return newComposite(list, opts...)
}

// Composite 多观察者扇出：Before 正序、After 逆序，逐个隔离。
//
// Composite 自身只读，可在所有调用间并发共享；每次调用的状态向量在 Before 中新建。
type Composite struct {
	observers  []Observer
	filter     Filter
	dispatcher *Dispatcher
}

func newComposite(list []Observer, opts ...CompositeOption) *Composite {
	cfg := &compositeConfig{filter: observeAll}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.dispatcher == nil {
		cfg.dispatcher = NewDispatcher(nil)
	}
	return &Composite{
		observers:  list,
		filter:     cfg.filter,
		dispatcher: cfg.dispatcher,
	}
}

// compositeState 一次调用的组合状态，只属于这一次调用。
type compositeState struct {
	owner *Composite
	desc  *Descriptor
	slots []Slot
	phase atomic.Uint32
}

// SlotsOf 返回 Composite.Before 产出的状态中各成员的槽副本，用于诊断。
// state 不是组合状态时返回 nil。
func SlotsOf(state any) []Slot {
	st, ok := state.(*compositeState)
	if !ok || st == nil {
		return nil
	}
	return slices.Clone(st.slots)
}

// Observers 返回成员列表副本。
func (c *Composite) Observers() []Observer {
	return slices.Clone(c.observers)
}

// Len 返回成员数量。
func (c *Composite) Len() int {
	return len(c.observers)
}

// Name 返回 composite(a,b,...) 形式的标识。
func (c *Composite) Name() string {
	names := make([]string, len(c.observers))
	for i, o := range c.observers {
		names[i] = ObserverName(o)
	}
	return "composite(" + strings.Join(names, ",") + ")"
}

// Enabled 任一成员启用即返回 true。
func (c *Composite) Enabled() bool {
	for _, o := range c.observers {
		if safeEnabled(o) {
			return true
		}
	}
	return false
}

// Before 按列表顺序执行每个启用成员的 Before。
//
// 不短路：某个成员被禁用或失败不影响后续成员。禁用成员的槽保持 Disabled。
// 返回的状态只能交给同一个 Composite 的 After 方法。
func (c *Composite) Before(d *Descriptor) (any, error) {
	st := &compositeState{
		owner: c,
		desc:  d,
		slots: make([]Slot, len(c.observers)),
	}
	for i, o := range c.observers {
		if safeEnabled(o) {
			st.slots[i] = c.dispatcher.RunBefore(o, c.filter, d)
		}
	}
	st.phase.Store(phaseBeforeRan)
	return st, nil
}

// AfterSuccess 按逆序执行各成员的 AfterSuccess。
//
// state 不是本 Composite 的 Before 产生的、或该调用已完成时，报告后不做任何事。
// 返回值始终为 nil：所有问题都已通过 Reporter 报告。
func (c *Composite) AfterSuccess(state any, result any) error {
	st, ok := c.acquire(state, phaseAfterSuccess)
	if !ok {
		return nil
	}
	for i := len(c.observers) - 1; i >= 0; i-- {
		c.dispatcher.RunAfterSuccess(c.observers[i], st.desc, st.slots[i], result)
	}
	st.phase.Store(phaseDone)
	return nil
}

// AfterFailure 按逆序执行各成员的 AfterFailure，语义同 AfterSuccess。
func (c *Composite) AfterFailure(state any, cause error) error {
	st, ok := c.acquire(state, phaseAfterFailure)
	if !ok {
		return nil
	}
	for i := len(c.observers) - 1; i >= 0; i-- {
		c.dispatcher.RunAfterFailure(c.observers[i], st.desc, st.slots[i], cause)
	}
	st.phase.Store(phaseDone)
	return nil
}

// acquire 校验状态并将其从 BeforeRan 推进到 next。
func (c *Composite) acquire(state any, next uint32) (*compositeState, bool) {
	st, ok := state.(*compositeState)
	if !ok || st == nil {
		c.dispatcher.reportMalformed(c, nil, fmt.Errorf("%w: got %T", ErrMalformedContext, state))
		return nil, false
	}
	if st.owner != c || len(st.slots) != len(c.observers) {
		c.dispatcher.reportMalformed(c, st.desc, fmt.Errorf("%w: state built by another composite", ErrMalformedContext))
		return nil, false
	}
	if !st.phase.CompareAndSwap(phaseBeforeRan, next) {
		c.dispatcher.reportMalformed(c, st.desc, ErrDoubleCompletion)
		return nil, false
	}
	return st, true
}

var (
	_ Observer = (*Composite)(nil)
	_ Named    = (*Composite)(nil)
)
