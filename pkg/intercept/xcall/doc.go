// Package xcall 是调用拦截与观察者组合引擎。
//
// # 设计理念
//
// xcall 只负责"在一次真实调用前后运行多个独立观察者"这一件事，
// 具体的观察者（指标、日志、追踪）以及产生拦截点的方式都在包外。
// 引擎保证三点：
//   - 观察者失败（返回错误或 panic）不会影响真实调用，也不会影响其他观察者
//   - 被禁用/被过滤的观察者（[Disabled]）与产出空状态的观察者（[Absent]）严格区分
//   - Before 按列表顺序执行，After 按相反顺序执行（栈式展开）
//
// # 组件
//
//   - [Descriptor]: 一次调用的不可变描述（目标、签名、参数、开始时间、ID）
//   - [Observer]: 四方法观察者契约
//   - [Filter]: 是否观察某次调用的谓词，见 [ObserveAll]、[ObserveNone]、[Toggle]、[Sampled]
//   - [Slot]: 每个观察者的状态槽（Present / Absent / Disabled 三态）
//   - [Dispatcher]: 单观察者的隔离执行
//   - [Compose]: 多观察者扇出组合
//   - [Site]: 调用点适配器，见 [Call]、[CallAsync] 与 Wrap 系列函数
//
// # 使用示例
//
//	site := xcall.NewBuilder().
//		Target("user-service").
//		Observe(metricsObs, logObs).
//		Build()
//
//	getUser := xcall.Wrap1(site, xcall.Signature{Type: "UserRepo", Method: "Get"}, repo.Get)
//	u, err := getUser(ctx, id)
//
// # 异步调用
//
// 返回 [xfuture.Future] 的调用通过 [CallAsync] 拦截：Before 同步执行，
// After 推迟到 Future 完成时在完成方 goroutine 上执行，且恰好一次。
// 返回给调用方的 Future 与原调用返回的是同一个对象。
//
// # 启用状态快照
//
// 观察者的 Enabled() 只在 Before 阶段查询一次，结果记录在 [Slot] 中；
// After 阶段不再查询。Before 与 After 之间切换开关不会导致"只有 After 没有 Before"。
package xcall
