package xcall

import (
	"sync/atomic"

	"github.com/omeyang/xprobe/pkg/observability/xsampling"
)

// Filter 决定一次调用是否被观察，与单个观察者的启用状态无关。
//
// 必须是描述的纯函数、无可观察副作用、可并发调用；
// 同一次调用中可能被求值零次或多次。
type Filter interface {
	ShouldObserve(d *Descriptor) bool
}

// FilterFunc 函数适配器。
type FilterFunc func(d *Descriptor) bool

// ShouldObserve 实现 Filter。
func (f FilterFunc) ShouldObserve(d *Descriptor) bool {
	return f(d)
}

type constFilter bool

func (c constFilter) ShouldObserve(*Descriptor) bool {
	return bool(c)
}

var (
	observeAll  Filter = constFilter(true)
	observeNone Filter = constFilter(false)
)

// ObserveAll 返回始终观察的 Filter（默认值）。
func ObserveAll() Filter {
	return observeAll
}

// ObserveNone 返回从不观察的 Filter。
func ObserveNone() Filter {
	return observeNone
}

// Toggle 将布尔开关适配为 Filter。nil 开关等同于 ObserveNone。
func Toggle(enabled func() bool) Filter {
	if enabled == nil {
		return observeNone
	}
	return FilterFunc(func(*Descriptor) bool { return enabled() })
}

// ToggleVar 将 atomic.Bool 适配为 Filter，便于运行时开关。
func ToggleVar(v *atomic.Bool) Filter {
	if v == nil {
		return observeNone
	}
	return FilterFunc(func(*Descriptor) bool { return v.Load() })
}

// Sampled 将采样器适配为 Filter，采样器以调用的 context 求值。
//
// 注意有状态采样器（如 CountSampler）每次求值都会推进计数，
// 这是采样器自身的状态，不属于 Filter 的副作用约束范围。
func Sampled(s xsampling.Sampler) Filter {
	if s == nil {
		return observeAll
	}
	return FilterFunc(func(d *Descriptor) bool { return s.ShouldSample(d.Context()) })
}

// AllOf 所有 Filter 都通过才观察；空列表观察全部。
func AllOf(filters ...Filter) Filter {
	fs := compactFilters(filters)
	if len(fs) == 0 {
		return observeAll
	}
	return FilterFunc(func(d *Descriptor) bool {
		for _, f := range fs {
			if !f.ShouldObserve(d) {
				return false
			}
		}
		return true
	})
}

// AnyOf 任一 Filter 通过即观察；空列表不观察。
func AnyOf(filters ...Filter) Filter {
	fs := compactFilters(filters)
	if len(fs) == 0 {
		return observeNone
	}
	return FilterFunc(func(d *Descriptor) bool {
		for _, f := range fs {
			if f.ShouldObserve(d) {
				return true
			}
		}
		return false
	})
}

// MethodIn 只观察签名（Type.Method 或 Method）在集合中的调用。
func MethodIn(methods ...string) Filter {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		set[m] = struct{}{}
	}
	return FilterFunc(func(d *Descriptor) bool {
		if _, ok := set[d.Method()]; ok {
			return true
		}
		_, ok := set[d.signature.Method]
		return ok
	})
}

func compactFilters(filters []Filter) []Filter {
	out := make([]Filter, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}
