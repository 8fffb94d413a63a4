package xsampling

import "context"

// CompositeSampler 组合多个采样器，短路求值。
type CompositeSampler struct {
	samplers []Sampler
	all      bool
}

func newComposite(all bool, samplers []Sampler) (*CompositeSampler, error) {
	for _, s := range samplers {
		if s == nil {
			return nil, ErrNilSampler
		}
	}
	return &CompositeSampler{samplers: append([]Sampler(nil), samplers...), all: all}, nil
}

// All 全部采样器同意才采样。空组合采样。
func All(samplers ...Sampler) (*CompositeSampler, error) {
	return newComposite(true, samplers)
}

// Any 任一采样器同意即采样。空组合不采样。
func Any(samplers ...Sampler) (*CompositeSampler, error) {
	return newComposite(false, samplers)
}

// ShouldSample 实现 Sampler。
func (s *CompositeSampler) ShouldSample(ctx context.Context) bool {
	for _, sub := range s.samplers {
		if sub.ShouldSample(ctx) != s.all {
			return !s.all
		}
	}
	return s.all
}

// Reset 重置所有可重置的子采样器。
func (s *CompositeSampler) Reset() {
	for _, sub := range s.samplers {
		if r, ok := sub.(Resettable); ok {
			r.Reset()
		}
	}
}

var _ Resettable = (*CompositeSampler)(nil)
