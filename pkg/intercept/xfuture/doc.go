// Package xfuture 提供最小化的 Future/Promise 原语，用于表达异步调用结果。
//
// # 设计理念
//
// xcall 的异步路径只需要一个能力：在结果就绪时恰好触发一次回调。
// xfuture 只实现这一契约，不引入调度器或线程池：
// 回调在完成 Promise 的 goroutine 上同步执行；
// 注册时 Future 已完成，则回调在注册方 goroutine 上立即执行。
//
// # 使用示例
//
//	fut, p := xfuture.New[int]()
//	go func() { p.Resolve(42) }()
//	fut.OnComplete(func(v int, err error) { ... })
//	v, err := fut.Await(ctx)
//
// # 取消
//
// 没有独立的"已取消"状态：[Promise.Cancel] 以包装了 context.Canceled 的错误
// 拒绝 Future，因此取消与其他失败走同一条路径。
package xfuture
