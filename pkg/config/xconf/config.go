package xconf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置格式。
type Format string

// 支持的格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 不支持的格式或扩展名。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 读取配置文件失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 解析配置失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotReloadable 从字节创建的配置不支持重载与监视。
	ErrNotReloadable = errors.New("xconf: config is not backed by a file")
)

// Option 配置选项。
type Option func(*options)

type options struct {
	delim string
	tag   string
}

// WithDelim 键分隔符，默认 "."。
func WithDelim(delim string) Option {
	return func(o *options) {
		if delim != "" {
			o.delim = delim
		}
	}
}

// WithTag Unmarshal 使用的结构体标签，默认 "koanf"。
func WithTag(tag string) Option {
	return func(o *options) {
		if tag != "" {
			o.tag = tag
		}
	}
}

// Config 一份已解析的配置。并发安全。
type Config struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	path   string
	format Format
	opts   options
}

func newOptions(opts []Option) options {
	o := options{delim: ".", tag: "koanf"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Load 从文件加载，按扩展名（.yaml/.yml/.json）识别格式。
func Load(path string, opts ...Option) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	c := &Config{path: path, format: format, opts: newOptions(opts)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse 从字节数据创建配置。空数据得到空配置。
func Parse(data []byte, format Format, opts ...Option) (*Config, error) {
	c := &Config{format: format, opts: newOptions(opts)}
	k, err := c.parse(data)
	if err != nil {
		return nil, err
	}
	c.k = k
	return c, nil
}

// DetectFormat 按扩展名识别格式。
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func (c *Config) parse(data []byte) (*koanf.Koanf, error) {
	var parser koanf.Parser
	switch c.format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, c.format)
	}
	k := koanf.New(c.opts.delim)
	if len(data) == 0 {
		return k, nil
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}

// Reload 重新读取并解析文件。失败时保留旧配置。
func (c *Config) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := c.parse(data)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.k = k
	c.mu.Unlock()
	return nil
}

// Koanf 返回当前的 koanf 实例。重载后旧实例不再更新，不要长期持有。
func (c *Config) Koanf() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

// Unmarshal 将 path 下的配置反序列化到 target，path 为空表示整个配置。
func (c *Config) Unmarshal(path string, target any) error {
	k := c.Koanf()
	if err := k.UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.tag}); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Bool 读取布尔值，第二个返回值表示键是否存在。
func (c *Config) Bool(path string) (value, ok bool) {
	k := c.Koanf()
	if !k.Exists(path) {
		return false, false
	}
	return k.Bool(path), true
}

// MapKeys 返回 path 下一级的键。
func (c *Config) MapKeys(path string) []string {
	return c.Koanf().MapKeys(path)
}

// Path 文件路径，字节配置为空。
func (c *Config) Path() string {
	return c.path
}

// Format 配置格式。
func (c *Config) Format() Format {
	return c.format
}
