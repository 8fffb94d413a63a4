// Package xrun 管理 xprobe 进程内长期运行的任务：指标服务、配置监视与周期任务。
//
// Group 基于 [errgroup] 构建：任一任务返回错误或父 context 取消时，
// 其余任务都会收到取消信号。被取消导致的 context.Canceled 不视为错误，
// 显式的取消原因（如 *SignalError）会从 Wait 返回。
//
//	g, ctx := xrun.NewGroup(ctx, xrun.WithLogger(logger), xrun.WithName("serve"))
//	g.GoWithName("metrics", xrun.HTTPServer(srv, ln, 5*time.Second))
//	g.GoWithName("demo", xrun.Ticker(time.Second, true, runBatch))
//	err := g.Wait()
//
// [Run] 额外注册信号监听，收到信号时以 *SignalError 结束整个 Group。
//
// [errgroup]: https://pkg.go.dev/golang.org/x/sync/errgroup
package xrun
