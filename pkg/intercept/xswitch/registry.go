package xswitch

import (
	"context"
	"errors"
	"maps"
	"sync/atomic"

	"github.com/omeyang/xprobe/pkg/config/xconf"
)

// 配置键。
const (
	KeyDefault    = "instrument.enabled"
	KeyComponents = "instrument.components"
)

// ErrNilConfig NewRegistry 收到 nil 配置。
var ErrNilConfig = errors.New("xswitch: nil config")

type snapshot struct {
	def        bool
	components map[string]bool
}

func (s *snapshot) lookup(id string) bool {
	if v, ok := s.components[id]; ok {
		return v
	}
	return s.def
}

// Registry 按组件 id 管理开关，数据来自 xconf 配置。
type Registry struct {
	cfg  *xconf.Config
	snap atomic.Pointer[snapshot]
}

// NewRegistry 从配置创建注册表。instrument.enabled 缺省为 true。
func NewRegistry(cfg *xconf.Config) (*Registry, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	r := &Registry{cfg: cfg}
	r.Refresh()
	return r, nil
}

// Refresh 从配置重建快照。
func (r *Registry) Refresh() {
	def, ok := r.cfg.Bool(KeyDefault)
	if !ok {
		def = true
	}
	s := &snapshot{def: def, components: make(map[string]bool)}
	for _, id := range r.cfg.MapKeys(KeyComponents) {
		if v, ok := r.cfg.Bool(KeyComponents + "." + id + ".enabled"); ok {
			s.components[id] = v
		}
	}
	r.snap.Store(s)
}

// Enabled 报告组件当前是否启用。
func (r *Registry) Enabled(id string) bool {
	return r.snap.Load().lookup(id)
}

// Snapshot 返回当前按组件配置的副本（不含默认值）。
func (r *Registry) Snapshot() (def bool, components map[string]bool) {
	s := r.snap.Load()
	return s.def, maps.Clone(s.components)
}

// Switch 返回组件的实时开关。
func (r *Registry) Switch(id string) Switch {
	return componentSwitch{r: r, id: id}
}

type componentSwitch struct {
	r  *Registry
	id string
}

func (s componentSwitch) Enabled() bool { return s.r.Enabled(s.id) }

// Watch 监视配置文件，重载成功后刷新快照；阻塞直到 ctx 结束。
//
// onChange 可为 nil，在每次重载尝试后调用。
func (r *Registry) Watch(ctx context.Context, onChange func(err error), opts ...xconf.WatchOption) error {
	return r.cfg.Watch(ctx, func(_ *xconf.Config, err error) {
		if err == nil {
			r.Refresh()
		}
		if onChange != nil {
			onChange(err)
		}
	}, opts...)
}
