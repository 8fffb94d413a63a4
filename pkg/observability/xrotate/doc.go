// Package xrotate 提供基于 lumberjack 的日志文件轮转写入器，作为 xlog 的输出目标。
//
// 典型用法见 xlog.Builder.SetRotation。直接使用：
//
//	w, err := xrotate.NewLumberjack("/var/log/xprobe/calls.log",
//		xrotate.WithMaxSize(100),
//		xrotate.WithMaxBackups(7),
//	)
//	defer w.Close()
package xrotate
