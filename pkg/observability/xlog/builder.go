package xlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/omeyang/xprobe/pkg/observability/xrotate"
)

// ReplaceAttrFunc 属性替换函数，用于字段重命名、脱敏与过滤。返回空 Key 的 Attr 表示移除。
type ReplaceAttrFunc func(groups []string, a slog.Attr) slog.Attr

// Builder 日志配置构建器
type Builder struct {
	output      io.Writer
	levelVar    *slog.LevelVar
	format      string
	addSource   bool
	enrich      bool
	replaceAttr ReplaceAttrFunc
	rotator     xrotate.Rotator
	onError     func(error)
	attrs       []slog.Attr
	err         error
}

// New 创建配置构建器。默认 stderr、Info、text，启用 context 注入。
func New() *Builder {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	return &Builder{
		output:   os.Stderr,
		levelVar: levelVar,
		format:   "text",
		enrich:   true,
	}
}

// SetOutput 设置输出目标。nil 被忽略。
func (b *Builder) SetOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// SetLevel 设置日志级别
func (b *Builder) SetLevel(level Level) *Builder {
	b.levelVar.Set(slog.Level(level))
	return b
}

// SetLevelString 通过字符串设置日志级别
func (b *Builder) SetLevelString(s string) *Builder {
	if b.err != nil {
		return b
	}
	level, err := ParseLevel(s)
	if err != nil {
		b.err = err
		return b
	}
	return b.SetLevel(level)
}

// SetFormat 设置输出格式：text 或 json。空值视为 text。
func (b *Builder) SetFormat(format string) *Builder {
	if b.err != nil {
		return b
	}
	normalized := strings.ToLower(strings.TrimSpace(format))
	switch normalized {
	case "":
		b.format = "text"
	case "text", "json":
		b.format = normalized
	default:
		b.err = fmt.Errorf("xlog: unknown format %q", format)
	}
	return b
}

// SetAddSource 是否记录源码位置
func (b *Builder) SetAddSource(enable bool) *Builder {
	b.addSource = enable
	return b
}

// SetEnrich 是否从 context 注入 trace_id 等字段，默认启用。
func (b *Builder) SetEnrich(enable bool) *Builder {
	b.enrich = enable
	return b
}

// SetRotation 输出到带轮转的文件，覆盖 SetOutput。
func (b *Builder) SetRotation(filename string, opts ...xrotate.Option) *Builder {
	if b.err != nil {
		return b
	}
	rotator, err := xrotate.NewLumberjack(filename, opts...)
	if err != nil {
		b.err = err
		return b
	}
	b.rotator = rotator
	b.output = rotator
	return b
}

// SetOnError 设置内部写入错误回调。回调在热路径同步执行，应保持轻量。
func (b *Builder) SetOnError(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// SetReplaceAttr 设置属性替换函数
func (b *Builder) SetReplaceAttr(fn ReplaceAttrFunc) *Builder {
	b.replaceAttr = fn
	return b
}

// SetAttrs 附加固定属性（如 component、version），在 Build 时一次性注入。
func (b *Builder) SetAttrs(attrs ...slog.Attr) *Builder {
	b.attrs = append(b.attrs, attrs...)
	return b
}

// Build 构建 Logger。
//
// 返回的 cleanup 关闭轮转文件，可重复调用。
func (b *Builder) Build() (LoggerWithLevel, func() error, error) {
	if b.err != nil {
		if b.rotator != nil {
			_ = b.rotator.Close()
		}
		return nil, nil, b.err
	}

	opts := &slog.HandlerOptions{
		Level:     b.levelVar,
		AddSource: b.addSource,
	}
	if b.replaceAttr != nil {
		opts.ReplaceAttr = b.replaceAttr
	}

	var handler slog.Handler
	if b.format == "json" {
		handler = slog.NewJSONHandler(b.output, opts)
	} else {
		handler = slog.NewTextHandler(b.output, opts)
	}

	if b.enrich {
		enriched, err := NewEnrichHandler(handler)
		if err != nil {
			return nil, nil, err
		}
		handler = enriched
	}
	if len(b.attrs) > 0 {
		handler = handler.WithAttrs(b.attrs)
	}

	return newLogger(handler, b.levelVar, b.addSource, b.onError), b.cleanup(), nil
}

func (b *Builder) cleanup() func() error {
	var once sync.Once
	rotator := b.rotator
	return func() error {
		var err error
		once.Do(func() {
			if rotator != nil {
				err = rotator.Close()
			}
		})
		return err
	}
}
