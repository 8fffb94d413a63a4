package xsampling

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
)

// RateSampler 按固定比率随机采样。
type RateSampler struct {
	rate float64
}

// NewRateSampler 创建比率采样器，rate ∈ [0, 1]。
func NewRateSampler(rate float64) (*RateSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	return &RateSampler{rate: rate}, nil
}

// ShouldSample 实现 Sampler。
func (s *RateSampler) ShouldSample(context.Context) bool {
	return decide(s.rate, rand.Float64)
}

// Rate 返回采样比率。
func (s *RateSampler) Rate() float64 {
	return s.rate
}

// CountSampler 每 n 次调用采样 1 次：第 1、n+1、2n+1... 次被采样。
type CountSampler struct {
	n       uint64
	counter atomic.Uint64
}

// NewCountSampler 创建计数采样器，n >= 1。
func NewCountSampler(n int) (*CountSampler, error) {
	if n < 1 {
		return nil, ErrInvalidCount
	}
	return &CountSampler{n: uint64(n)}, nil
}

// ShouldSample 实现 Sampler。零值按全采样处理。
func (s *CountSampler) ShouldSample(context.Context) bool {
	if s.n == 0 {
		return true
	}
	return (s.counter.Add(1)-1)%s.n == 0
}

// Reset 计数归零。
func (s *CountSampler) Reset() {
	s.counter.Store(0)
}

// N 返回采样间隔。
func (s *CountSampler) N() int {
	return int(s.n)
}

var (
	_ Sampler    = (*RateSampler)(nil)
	_ Resettable = (*CountSampler)(nil)
)
