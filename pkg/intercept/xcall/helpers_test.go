package xcall_test

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
)

// eventLog 多个观察者共享的事件记录。
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

// recorder 记录生命周期事件的观察者。
//
// Before 返回 state（可为 nil），beforeErr/afterErr 控制失败，
// panicIn 指定在哪个阶段 panic（"before"/"after"）。
type recorder struct {
	name      string
	log       *eventLog
	enabled   func() bool
	state     any
	beforeErr error
	afterErr  error
	panicIn   string

	mu        sync.Mutex
	befores   int
	seen      []*xcall.Descriptor
	successes []call
	failures  []call
}

type call struct {
	state any
	value any
	cause error
}

func newRecorder(name string, log *eventLog) *recorder {
	return &recorder{name: name, log: log, state: name + "-state"}
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Enabled() bool {
	if r.enabled == nil {
		return true
	}
	return r.enabled()
}

func (r *recorder) Before(d *xcall.Descriptor) (any, error) {
	r.mu.Lock()
	r.befores++
	r.seen = append(r.seen, d)
	r.mu.Unlock()
	if r.log != nil {
		r.log.add("before:%s", r.name)
	}
	if r.panicIn == "before" {
		panic("before " + r.name)
	}
	if r.beforeErr != nil {
		return nil, r.beforeErr
	}
	return r.state, nil
}

func (r *recorder) AfterSuccess(state, result any) error {
	r.mu.Lock()
	r.successes = append(r.successes, call{state: state, value: result})
	r.mu.Unlock()
	if r.log != nil {
		r.log.add("after:%s", r.name)
	}
	if r.panicIn == "after" {
		panic("after " + r.name)
	}
	return r.afterErr
}

func (r *recorder) AfterFailure(state any, cause error) error {
	r.mu.Lock()
	r.failures = append(r.failures, call{state: state, cause: cause})
	r.mu.Unlock()
	if r.log != nil {
		r.log.add("after:%s", r.name)
	}
	if r.panicIn == "after" {
		panic("after " + r.name)
	}
	return r.afterErr
}

func (r *recorder) counts() (befores, successes, failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.befores, len(r.successes), len(r.failures)
}

func (r *recorder) afters() int {
	_, s, f := r.counts()
	return s + f
}

func (r *recorder) lastDescriptor() *xcall.Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[len(r.seen)-1]
}

func (r *recorder) lastSuccess() call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.successes[len(r.successes)-1]
}

func (r *recorder) lastFailure() call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures[len(r.failures)-1]
}

// collectReporter 收集所有报告。
type collectReporter struct {
	mu   sync.Mutex
	errs []*xcall.ObserverError
}

func (c *collectReporter) Report(_ context.Context, err *xcall.ObserverError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *collectReporter) all() []*xcall.ObserverError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*xcall.ObserverError(nil), c.errs...)
}

func (c *collectReporter) count(target error) int {
	n := 0
	for _, e := range c.all() {
		if errors.Is(e, target) {
			n++
		}
	}
	return n
}

var testSig = xcall.Signature{Type: "Calc", Method: "Double", Params: []string{"int"}}

func double(_ context.Context, n int) (int, error) {
	return n * 2, nil
}
