package xcall

// slotKind 状态槽类型。零值为 slotDisabled，
// 保证新分配的 ContextVector 默认就是"未运行"。
type slotKind uint8

const (
	slotDisabled slotKind = iota
	slotAbsent
	slotPresent
)

// Slot 记录一个观察者在一次调用中的 Before 结果。
//
// 三态：
//   - Disabled: Before 未被调用（观察者禁用或被 Filter 拒绝），After 也不会被调用
//   - Absent: Before 被调用但没有产出状态（返回 nil 或失败），After 仍以 nil 调用
//     （Before 失败的情况由 Dispatcher 标记为 failed，After 被跳过）
//   - Present: Before 产出了状态，After 以该状态调用
//
// Disabled 只在引擎内部使用，永远不会交给观察者。
type Slot struct {
	kind   slotKind
	failed bool
	value  any
}

// Disabled 返回"未运行"哨兵槽。
func Disabled() Slot {
	return Slot{kind: slotDisabled}
}

// Absent 返回"运行了但没有状态"槽。
func Absent() Slot {
	return Slot{kind: slotAbsent}
}

// Present 返回携带状态 v 的槽。v 为 nil 时等同于 Absent。
func Present(v any) Slot {
	if v == nil {
		return Absent()
	}
	return Slot{kind: slotPresent, value: v}
}

// failedSlot Before 失败：状态缺失且 After 被跳过。
func failedSlot() Slot {
	return Slot{kind: slotAbsent, failed: true}
}

// IsDisabled 报告 Before 是否未被运行。
func (s Slot) IsDisabled() bool {
	return s.kind == slotDisabled
}

// IsAbsent 报告观察者是否运行但没有状态。
func (s Slot) IsAbsent() bool {
	return s.kind == slotAbsent
}

// IsPresent 报告是否携带状态。
func (s Slot) IsPresent() bool {
	return s.kind == slotPresent
}

// Failed 报告 Before 是否失败。失败的槽不会触发 After。
func (s Slot) Failed() bool {
	return s.failed
}

// Value 返回交还给观察者的状态，非 Present 时为 nil。
func (s Slot) Value() any {
	return s.value
}

// wantsAfter 报告是否需要调用 After。
func (s Slot) wantsAfter() bool {
	return s.kind != slotDisabled && !s.failed
}

// String 返回槽的可读形式，用于调试输出。
func (s Slot) String() string {
	switch {
	case s.kind == slotDisabled:
		return "disabled"
	case s.failed:
		return "failed"
	case s.kind == slotAbsent:
		return "absent"
	default:
		return "present"
	}
}
