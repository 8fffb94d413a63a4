package xsampling

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/cespare/xxhash/v2"

	"github.com/omeyang/xprobe/pkg/context/xctx"
)

// KeyFunc 从 context 提取采样 key。相同 key 在相同比率下决策恒定。
type KeyFunc func(ctx context.Context) string

// KeyBasedOption KeyBasedSampler 选项。
type KeyBasedOption func(*KeyBasedSampler)

// WithOnEmptyKey 空 key 回调，用于发现上下文传播断裂。回调不做 panic 隔离，应保持轻量。
func WithOnEmptyKey(fn func()) KeyBasedOption {
	return func(s *KeyBasedSampler) {
		s.onEmptyKey = fn
	}
}

// KeyBasedSampler 基于 key 的一致性采样。
//
// xxhash 跨进程确定，同一 key 在所有服务中得到相同决策；空 key 回退为随机采样。
type KeyBasedSampler struct {
	rate       float64
	keyFunc    KeyFunc
	onEmptyKey func()
}

// NewKeyBasedSampler 创建一致性采样器。
func NewKeyBasedSampler(rate float64, keyFunc KeyFunc, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if keyFunc == nil {
		return nil, ErrNilKeyFunc
	}
	s := &KeyBasedSampler{rate: rate, keyFunc: keyFunc}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// ByTraceID 以 xctx trace_id 为 key 的一致性采样器。
func ByTraceID(rate float64, opts ...KeyBasedOption) (*KeyBasedSampler, error) {
	return NewKeyBasedSampler(rate, xctx.TraceID, opts...)
}

// ShouldSample 实现 Sampler。nil ctx 按空 key 处理。
func (s *KeyBasedSampler) ShouldSample(ctx context.Context) bool {
	return decide(s.rate, func() float64 {
		var key string
		if ctx != nil {
			key = s.keyFunc(ctx)
		}
		if key == "" {
			if s.onEmptyKey != nil {
				s.onEmptyKey()
			}
			return rand.Float64()
		}
		return float64(xxhash.Sum64String(key)) / float64(math.MaxUint64)
	})
}

// Rate 返回采样比率。
func (s *KeyBasedSampler) Rate() float64 {
	return s.rate
}

var _ Sampler = (*KeyBasedSampler)(nil)
