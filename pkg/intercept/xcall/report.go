package xcall

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

// Reporter 接收被隔离的观察者错误。
//
// Report 在热路径上同步调用，应保持轻量；panic 会被 Dispatcher 吞掉。
type Reporter interface {
	Report(ctx context.Context, err *ObserverError)
}

// ReporterFunc 函数适配器。
type ReporterFunc func(ctx context.Context, err *ObserverError)

// Report 实现 Reporter。
func (f ReporterFunc) Report(ctx context.Context, err *ObserverError) {
	f(ctx, err)
}

// DiscardReporter 丢弃所有报告。
type DiscardReporter struct{}

// Report 空实现。
func (DiscardReporter) Report(context.Context, *ObserverError) {}

// ReporterStats 报告统计。
type ReporterStats struct {
	// Reported 已写入日志的报告数。
	Reported uint64
	// Suppressed 因限流被丢弃的报告数。
	Suppressed uint64
}

// 默认限流：每秒 10 条，突发 20 条。
const (
	defaultReportRate  = rate.Limit(10)
	defaultReportBurst = 20
)

// LogReporter 通过 xlog 记录观察者错误。
//
// 观察者错误记为 Warn 并受限流保护，避免一个持续失败的观察者刷屏；
// 状态不匹配（接线缺陷）记为 Error，不受限流。
type LogReporter struct {
	logger     xlog.Logger
	limiter    *rate.Limiter
	reported   atomic.Uint64
	suppressed atomic.Uint64
}

// ReporterOption LogReporter 配置选项。
type ReporterOption func(*LogReporter)

// WithRateLimit 设置限流参数。limit 为 rate.Inf 时不限流。
func WithRateLimit(limit rate.Limit, burst int) ReporterOption {
	return func(r *LogReporter) {
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithReportInterval 以"每 interval 一条"的形式设置限流。
func WithReportInterval(interval time.Duration, burst int) ReporterOption {
	return WithRateLimit(rate.Every(interval), burst)
}

// NewLogReporter 创建日志报告器。logger 为 nil 时使用 xlog.Default()。
func NewLogReporter(logger xlog.Logger, opts ...ReporterOption) *LogReporter {
	if logger == nil {
		logger = xlog.Default()
	}
	r := &LogReporter{
		logger:  logger,
		limiter: rate.NewLimiter(defaultReportRate, defaultReportBurst),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Report 实现 Reporter。
func (r *LogReporter) Report(ctx context.Context, err *ObserverError) {
	if err == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	attrs := make([]slog.Attr, 0, 6)
	attrs = append(attrs,
		xlog.Observer(err.Observer),
		xlog.Phase(err.Kind.String()),
		xlog.Err(err.Err),
	)
	if err.Call != nil {
		attrs = append(attrs,
			xlog.Target(err.Call.Target()),
			xlog.Method(err.Call.Signature().String()),
			xlog.CallID(err.Call.ID()),
		)
	}

	if err.Kind == KindMalformed {
		r.reported.Add(1)
		r.logger.Error(ctx, "xcall: malformed call context", attrs...)
		return
	}
	if !r.limiter.Allow() {
		r.suppressed.Add(1)
		return
	}
	r.reported.Add(1)
	r.logger.Warn(ctx, "xcall: observer failed", attrs...)
}

// Stats 返回报告统计。
func (r *LogReporter) Stats() ReporterStats {
	return ReporterStats{
		Reported:   r.reported.Load(),
		Suppressed: r.suppressed.Load(),
	}
}

var (
	_ Reporter = (*LogReporter)(nil)
	_ Reporter = DiscardReporter{}
	_ Reporter = ReporterFunc(nil)
)
