package xsampling

import (
	"context"
	"errors"
	"math"
)

var (
	// ErrInvalidRate 比率不在 [0, 1] 或为 NaN。
	ErrInvalidRate = errors.New("xsampling: rate must be in [0.0, 1.0]")

	// ErrInvalidCount 计数间隔小于 1。
	ErrInvalidCount = errors.New("xsampling: count n must be >= 1")

	// ErrNilKeyFunc KeyFunc 为 nil。
	ErrNilKeyFunc = errors.New("xsampling: keyFunc must not be nil")

	// ErrNilSampler 组合中包含 nil 采样器。
	ErrNilSampler = errors.New("xsampling: sampler must not be nil")
)

// Sampler 采样决策。实现必须并发安全，且不应阻塞。
type Sampler interface {
	ShouldSample(ctx context.Context) bool
}

// Resettable 可重置内部状态的采样器。
type Resettable interface {
	Sampler
	Reset()
}

type constSampler bool

func (s constSampler) ShouldSample(context.Context) bool { return bool(s) }

// Always 全采样。
func Always() Sampler { return constSampler(true) }

// Never 不采样。
func Never() Sampler { return constSampler(false) }

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return ErrInvalidRate
	}
	return nil
}

// decide 端点值不消耗随机数。
func decide(rate float64, draw func() float64) bool {
	switch {
	case rate <= 0:
		return false
	case rate >= 1:
		return true
	default:
		return draw() < rate
	}
}
