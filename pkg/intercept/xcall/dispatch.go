package xcall

import "context"

// Dispatcher 单观察者执行器：执行启用/过滤两道闸门，并隔离观察者的错误与 panic。
//
// Dispatcher 无状态（除 Reporter 外），可在所有调用与 goroutine 间共享。
// 所有方法都不会 panic，也不会向调用方返回观察者错误。
type Dispatcher struct {
	reporter Reporter
}

// NewDispatcher 创建 Dispatcher。reporter 为 nil 时使用基于 xlog.Default() 的 LogReporter。
func NewDispatcher(reporter Reporter) *Dispatcher {
	if reporter == nil {
		reporter = NewLogReporter(nil)
	}
	return &Dispatcher{reporter: reporter}
}

// Reporter 返回错误报告器。
func (d *Dispatcher) Reporter() Reporter {
	return d.reporter
}

// RunBefore 执行 Filter 检查与 Before。
//
//   - Filter 拒绝：返回 Disabled，不调用 Before
//   - Before 失败或 panic：报告后返回失败的 Absent 槽（观察者有资格运行，只是失败了）
//   - 其他：返回 Present(state)，state 为 nil 时为 Absent
func (d *Dispatcher) RunBefore(o Observer, f Filter, desc *Descriptor) Slot {
	if f != nil && !f.ShouldObserve(desc) {
		return Disabled()
	}
	state, err := safeBefore(o, desc)
	if err != nil {
		d.report(o, KindBefore, desc, err)
		return failedSlot()
	}
	return Present(state)
}

// RunBeforeIfEnabled 先检查 o.Enabled()，再执行 RunBefore。
//
// 用于需要在求值 Filter 前就避开全部开销的调用点。Enabled panic 视为禁用。
func (d *Dispatcher) RunBeforeIfEnabled(o Observer, f Filter, desc *Descriptor) Slot {
	if !safeEnabled(o) {
		return Disabled()
	}
	return d.RunBefore(o, f, desc)
}

// RunAfterSuccess 对非 Disabled 的槽调用 AfterSuccess，隔离其错误。
func (d *Dispatcher) RunAfterSuccess(o Observer, desc *Descriptor, slot Slot, result any) {
	if !slot.wantsAfter() {
		return
	}
	if err := safeAfterSuccess(o, slot.Value(), result); err != nil {
		d.report(o, KindAfter, desc, err)
	}
}

// RunAfterFailure 对非 Disabled 的槽调用 AfterFailure，隔离其错误。
func (d *Dispatcher) RunAfterFailure(o Observer, desc *Descriptor, slot Slot, cause error) {
	if !slot.wantsAfter() {
		return
	}
	if err := safeAfterFailure(o, slot.Value(), cause); err != nil {
		d.report(o, KindAfter, desc, err)
	}
}

// reportMalformed 报告接线缺陷。
func (d *Dispatcher) reportMalformed(o Observer, desc *Descriptor, err error) {
	d.report(o, KindMalformed, desc, err)
}

// report 组装 ObserverError 并调用 Reporter，吞掉观察者 Name() 与 Reporter 的 panic。
func (d *Dispatcher) report(o Observer, kind Kind, desc *Descriptor, err error) {
	defer func() { _ = recover() }()
	ctx := context.Background()
	if desc != nil {
		ctx = desc.Context()
	}
	d.reporter.Report(ctx, &ObserverError{Kind: kind, Observer: ObserverName(o), Call: desc, Err: err})
}

func safeEnabled(o Observer) (enabled bool) {
	defer func() {
		if r := recover(); r != nil {
			enabled = false
		}
	}()
	return o.Enabled()
}

func safeBefore(o Observer, desc *Descriptor) (state any, err error) {
	defer func() {
		if r := recover(); r != nil {
			state, err = nil, &PanicError{Value: r}
		}
	}()
	return o.Before(desc)
}

func safeAfterSuccess(o Observer, state, result any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return o.AfterSuccess(state, result)
}

func safeAfterFailure(o Observer, state any, cause error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return o.AfterFailure(state, cause)
}
