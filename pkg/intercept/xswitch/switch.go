package xswitch

import "sync/atomic"

// Switch 启停开关。实现必须并发安全，Enabled 不应阻塞。
type Switch interface {
	Enabled() bool
}

// Func 函数适配器。
type Func func() bool

// Enabled 实现 Switch。
func (f Func) Enabled() bool { return f() }

type static bool

func (s static) Enabled() bool { return bool(s) }

// Static 常量开关。
func Static(enabled bool) Switch {
	return static(enabled)
}

// On 常开开关，观察者的默认值。
var On = Static(true)

// Toggle 可在运行时切换的开关。零值为关闭。
type Toggle struct {
	v atomic.Bool
}

// NewToggle 以初始值创建 Toggle。
func NewToggle(enabled bool) *Toggle {
	t := &Toggle{}
	t.v.Store(enabled)
	return t
}

// Enabled 实现 Switch。
func (t *Toggle) Enabled() bool { return t.v.Load() }

// Set 设置开关，返回旧值。
func (t *Toggle) Set(enabled bool) bool { return t.v.Swap(enabled) }

// And 所有开关均打开时才打开。空参数为打开。
func And(switches ...Switch) Switch {
	list := append([]Switch(nil), switches...)
	return Func(func() bool {
		for _, s := range list {
			if s != nil && !s.Enabled() {
				return false
			}
		}
		return true
	})
}
