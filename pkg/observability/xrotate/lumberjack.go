package xrotate

import (
	"fmt"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// 参数边界。
const (
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 7
	defaultMaxAgeDays = 30

	maxSizeLimitMB  = 10240
	maxBackupsLimit = 1024
	maxAgeLimitDays = 3650
)

type lumberjackConfig struct {
	maxSizeMB  int
	maxBackups int
	maxAgeDays int
	compress   bool
	localTime  bool
}

// Option lumberjack 轮转器配置选项。
type Option func(*lumberjackConfig)

// WithMaxSize 单文件最大体积（MB），默认 100。
func WithMaxSize(mb int) Option {
	return func(c *lumberjackConfig) { c.maxSizeMB = mb }
}

// WithMaxBackups 最多保留的旧文件数，默认 7，0 表示不按数量清理。
func WithMaxBackups(n int) Option {
	return func(c *lumberjackConfig) { c.maxBackups = n }
}

// WithMaxAge 旧文件最长保留天数，默认 30，0 表示不按时间清理。
func WithMaxAge(days int) Option {
	return func(c *lumberjackConfig) { c.maxAgeDays = days }
}

// WithCompress 是否 gzip 压缩旧文件，默认开启。
func WithCompress(compress bool) Option {
	return func(c *lumberjackConfig) { c.compress = compress }
}

// WithLocalTime 备份文件名是否使用本地时间，默认 UTC。
func WithLocalTime(local bool) Option {
	return func(c *lumberjackConfig) { c.localTime = local }
}

type lumberjackRotator struct {
	logger *lumberjack.Logger
	closed atomic.Bool
}

// NewLumberjack 创建基于 lumberjack 的轮转器。
func NewLumberjack(filename string, opts ...Option) (Rotator, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	cfg := &lumberjackConfig{
		maxSizeMB:  defaultMaxSizeMB,
		maxBackups: defaultMaxBackups,
		maxAgeDays: defaultMaxAgeDays,
		compress:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &lumberjackRotator{
		logger: &lumberjack.Logger{
			Filename:   filepath.Clean(filename),
			MaxSize:    cfg.maxSizeMB,
			MaxBackups: cfg.maxBackups,
			MaxAge:     cfg.maxAgeDays,
			Compress:   cfg.compress,
			LocalTime:  cfg.localTime,
		},
	}, nil
}

func validate(cfg *lumberjackConfig) error {
	if cfg.maxSizeMB < 1 || cfg.maxSizeMB > maxSizeLimitMB {
		return fmt.Errorf("%w: %d", ErrInvalidMaxSize, cfg.maxSizeMB)
	}
	if cfg.maxBackups < 0 || cfg.maxBackups > maxBackupsLimit {
		return fmt.Errorf("%w: %d", ErrInvalidMaxBackups, cfg.maxBackups)
	}
	if cfg.maxAgeDays < 0 || cfg.maxAgeDays > maxAgeLimitDays {
		return fmt.Errorf("%w: %d", ErrInvalidMaxAge, cfg.maxAgeDays)
	}
	if cfg.maxBackups == 0 && cfg.maxAgeDays == 0 {
		return ErrNoCleanupPolicy
	}
	return nil
}

func (r *lumberjackRotator) Write(p []byte) (int, error) {
	if r.closed.Load() {
		return 0, ErrClosed
	}
	return r.logger.Write(p)
}

func (r *lumberjackRotator) Rotate() error {
	if r.closed.Load() {
		return ErrClosed
	}
	return r.logger.Rotate()
}

func (r *lumberjackRotator) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return r.logger.Close()
}
