package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/omeyang/xprobe/pkg/config/xconf"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

// usageError 参数或配置错误，退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// appConfig 工具配置。开关部分（instrument.*）由 xswitch 直接读取，不在此结构中。
type appConfig struct {
	Log        logConfig        `koanf:"log"`
	Sampling   samplingConfig   `koanf:"sampling"`
	Quarantine quarantineConfig `koanf:"quarantine"`
	Demo       demoConfig       `koanf:"demo"`
}

type logConfig struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	Compress   bool   `koanf:"compress"`
}

type samplingConfig struct {
	Rate    float64 `koanf:"rate"`
	ByTrace bool    `koanf:"by_trace"`
}

type quarantineConfig struct {
	TripAfter uint32        `koanf:"trip_after"`
	Cooldown  time.Duration `koanf:"cooldown"`
}

type demoConfig struct {
	Target      string        `koanf:"target"`
	Calls       int           `koanf:"calls"`
	Concurrency int           `koanf:"concurrency"`
	FailEvery   int           `koanf:"fail_every"`
	Latency     time.Duration `koanf:"latency"`
}

func defaultConfig() appConfig {
	return appConfig{
		Log:        logConfig{Level: "info", Format: "text", MaxSizeMB: 100, MaxBackups: 3},
		Sampling:   samplingConfig{Rate: 1},
		Quarantine: quarantineConfig{TripAfter: 5, Cooldown: 30 * time.Second},
		Demo:       demoConfig{Target: "inventory", Calls: 20, Concurrency: 4},
	}
}

// loadConfig 加载并校验配置文件。
func loadConfig(path string) (*xconf.Config, *appConfig, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, usagef("需要通过 --config 指定配置文件")
	}
	cfg, err := xconf.Load(path)
	if err != nil {
		return nil, nil, &usageError{msg: err.Error()}
	}
	app, err := decodeConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, app, nil
}

func decodeConfig(cfg *xconf.Config) (*appConfig, error) {
	app := defaultConfig()
	if err := cfg.Unmarshal("", &app); err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	if err := app.validate(); err != nil {
		return nil, err
	}
	return &app, nil
}

func (c *appConfig) validate() error {
	if _, err := xlog.ParseLevel(c.Log.Level); err != nil {
		return usagef("log.level: %v", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return usagef("log.format: 不支持的格式 %q", c.Log.Format)
	}
	if c.Sampling.Rate < 0 || c.Sampling.Rate > 1 {
		return usagef("sampling.rate: 必须在 [0, 1] 内，实际 %v", c.Sampling.Rate)
	}
	if c.Quarantine.TripAfter == 0 {
		return usagef("quarantine.trip_after: 必须 >= 1")
	}
	if c.Quarantine.Cooldown <= 0 {
		return usagef("quarantine.cooldown: 必须为正")
	}
	if c.Demo.Calls < 0 {
		return usagef("demo.calls: 不能为负")
	}
	if c.Demo.Concurrency < 1 {
		return usagef("demo.concurrency: 必须 >= 1")
	}
	if c.Demo.FailEvery < 0 {
		return usagef("demo.fail_every: 不能为负")
	}
	if c.Demo.Latency < 0 {
		return usagef("demo.latency: 不能为负")
	}
	return nil
}
