package xconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchFunc 重载回调。err 非 nil 表示本次重载失败，cfg 仍持有旧配置。
type WatchFunc func(cfg *Config, err error)

// WatchOption 监视选项。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 防抖时间，默认 100ms。
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// Watch 监视配置文件并在变更后重载，阻塞直到 ctx 结束，返回 nil。
//
// 目录监视建立失败时立即返回错误。回调在防抖定时器的 goroutine 上串行执行。
func (c *Config) Watch(ctx context.Context, fn WatchFunc, opts ...WatchOption) error {
	if c.path == "" {
		return ErrNotReloadable
	}
	o := watchOptions{debounce: 100 * time.Millisecond}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("xconf: create watcher: %w", err)
	}
	dir := filepath.Dir(c.path)
	if err := w.Add(dir); err != nil {
		return errors.Join(fmt.Errorf("xconf: watch %s: %w", dir, err), w.Close())
	}

	d := &debouncer{delay: o.debounce, fire: func() {
		err := c.Reload()
		if fn != nil {
			fn(c, err)
		}
	}}
	defer d.stop()
	defer func() { _ = w.Close() }()

	name := filepath.Base(c.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevant(ev, name) {
				d.trigger()
			}
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if fn != nil {
				fn(c, fmt.Errorf("xconf: watch error: %w", werr))
			}
		}
	}
}

// relevant Write 直接修改；Create/Rename 对应编辑器的原子写入。
func relevant(ev fsnotify.Event, name string) bool {
	if filepath.Base(ev.Name) != name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

type debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	stopped bool
	fire    func()
	// running 串行化 fire，stop 等待进行中的回调结束。
	running sync.Mutex
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.running.Lock()
		defer d.running.Unlock()
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fire()
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	d.running.Lock()
	//nolint:staticcheck // 仅用于等待进行中的回调
	d.running.Unlock()
}
