// Package xconf 基于 koanf 的配置加载与热更新。
//
// xprobe 的开关注册表（xswitch）与命令行工具（xprobectl）都从这里读取配置。
//
//	cfg, err := xconf.Load("/etc/xprobe/xprobe.yaml")
//	enabled, ok := cfg.Bool("instrument.enabled")
//
// # 热更新
//
// [Config.Watch] 监视配置文件所在目录（编辑器常以 rename 方式原子写入），
// 防抖后整体重新解析并原子替换内部 koanf 实例，然后回调通知。
// 解析失败时保留旧配置。Watch 阻塞直到 ctx 结束。
package xconf
