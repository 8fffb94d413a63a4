// xprobectl 演示并验证 xprobe 调用拦截链路的命令行工具。
//
// 用法:
//
//	xprobectl <命令> [命令参数]
//
// 命令:
//
//	run      按配置构建调用点，执行一批同步/异步演示调用并输出 Prometheus 指标
//	serve    周期性执行演示调用，通过 HTTP 暴露 /metrics，并热加载开关配置
//	check    校验配置文件
//
// 退出码:
//
//	0: 成功
//	1: 执行失败
//	2: 参数或配置错误
//
// 示例:
//
//	xprobectl check -c testdata/xprobe.yaml
//	xprobectl run -c testdata/xprobe.yaml --calls 50
//	xprobectl serve -c testdata/xprobe.yaml --listen :9464
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args))
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:     "xprobectl",
		Usage:    "xprobe 调用拦截演示与配置校验工具",
		Version:  fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Commands: createCommands(),
		Authors: []any{
			"XProbe Team",
		},
		// 禁止 urfave/cli 直接 os.Exit，由 run() 统一映射退出码。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := createApp().Run(ctx, args); err != nil {
		return exitCode(err)
	}
	return 0
}

// exitCode 将错误映射为退出码，并输出错误详情。
func exitCode(err error) int {
	var usageErr *usageError
	if errors.As(err, &usageErr) {
		fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
		return 2
	}
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return 2
	}
	if errors.Is(err, context.Canceled) {
		return 0
	}
	fmt.Fprintf(os.Stderr, "错误: %v\n", err)
	return 1
}
