// Package xswitch 观察者启停开关。
//
// 观察者的 Enabled() 每次调用都会被查询，因此开关必须廉价且无副作用：
// [Static] 为常量，[Toggle] 为原子布尔，[Registry] 读取原子快照。
//
// # 按组件配置
//
// Registry 从 xconf 配置读取：
//
//	instrument:
//	  enabled: true          # 默认值
//	  components:
//	    tracing:
//	      enabled: false     # 按组件覆盖
//
// Registry.Switch("tracing") 返回实时开关；Registry.Watch 在配置文件变更后刷新快照，
// 已发出的开关立即看到新值。
package xswitch
