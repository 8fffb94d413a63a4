package xsampling_test

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xprobe/pkg/context/xctx"
	"github.com/omeyang/xprobe/pkg/observability/xsampling"
)

func TestConst(t *testing.T) {
	ctx := context.Background()
	assert.True(t, xsampling.Always().ShouldSample(ctx))
	assert.False(t, xsampling.Never().ShouldSample(ctx))
}

func TestNewRateSampler_Validation(t *testing.T) {
	for _, rate := range []float64{-0.1, 1.1, math.NaN(), math.Inf(1)} {
		_, err := xsampling.NewRateSampler(rate)
		assert.ErrorIs(t, err, xsampling.ErrInvalidRate, "rate=%v", rate)
	}
}

func TestRateSampler_Endpoints(t *testing.T) {
	ctx := context.Background()
	zero, err := xsampling.NewRateSampler(0)
	require.NoError(t, err)
	one, err := xsampling.NewRateSampler(1)
	require.NoError(t, err)
	for range 100 {
		assert.False(t, zero.ShouldSample(ctx))
		assert.True(t, one.ShouldSample(ctx))
	}
	assert.Equal(t, 1.0, one.Rate())
}

func TestRateSampler_Distribution(t *testing.T) {
	s, err := xsampling.NewRateSampler(0.3)
	require.NoError(t, err)
	const n = 20000
	hits := 0
	for range n {
		if s.ShouldSample(context.Background()) {
			hits++
		}
	}
	assert.InDelta(t, 0.3, float64(hits)/n, 0.03)
}

func TestCountSampler(t *testing.T) {
	_, err := xsampling.NewCountSampler(0)
	assert.ErrorIs(t, err, xsampling.ErrInvalidCount)

	s, err := xsampling.NewCountSampler(3)
	require.NoError(t, err)
	var got []bool
	for range 7 {
		got = append(got, s.ShouldSample(context.Background()))
	}
	assert.Equal(t, []bool{true, false, false, true, false, false, true}, got)
	assert.Equal(t, 3, s.N())

	s.Reset()
	assert.True(t, s.ShouldSample(context.Background()))

	var zero xsampling.CountSampler
	assert.True(t, zero.ShouldSample(context.Background()))
}

func TestKeyBasedSampler_Consistent(t *testing.T) {
	s, err := xsampling.ByTraceID(0.5)
	require.NoError(t, err)

	for i := range 50 {
		ctx, err := xctx.WithTraceID(context.Background(), fmt.Sprintf("trace-%d", i))
		require.NoError(t, err)
		first := s.ShouldSample(ctx)
		for range 5 {
			assert.Equal(t, first, s.ShouldSample(ctx))
		}
	}
}

func TestKeyBasedSampler_EmptyKey(t *testing.T) {
	var empty atomic.Int32
	s, err := xsampling.NewKeyBasedSampler(0.5, func(context.Context) string { return "" },
		xsampling.WithOnEmptyKey(func() { empty.Add(1) }))
	require.NoError(t, err)

	s.ShouldSample(context.Background())
	//nolint:staticcheck // nil ctx 按空 key 处理
	s.ShouldSample(nil)
	assert.Equal(t, int32(2), empty.Load())

	_, err = xsampling.NewKeyBasedSampler(0.5, nil)
	assert.ErrorIs(t, err, xsampling.ErrNilKeyFunc)
}

func TestComposite(t *testing.T) {
	ctx := context.Background()
	all, err := xsampling.All(xsampling.Always(), xsampling.Never())
	require.NoError(t, err)
	assert.False(t, all.ShouldSample(ctx))

	anyOf, err := xsampling.Any(xsampling.Never(), xsampling.Always())
	require.NoError(t, err)
	assert.True(t, anyOf.ShouldSample(ctx))

	emptyAll, _ := xsampling.All()
	emptyAny, _ := xsampling.Any()
	assert.True(t, emptyAll.ShouldSample(ctx))
	assert.False(t, emptyAny.ShouldSample(ctx))

	_, err = xsampling.All(nil)
	assert.ErrorIs(t, err, xsampling.ErrNilSampler)
}

func TestComposite_Reset(t *testing.T) {
	count, err := xsampling.NewCountSampler(2)
	require.NoError(t, err)
	c, err := xsampling.All(count, xsampling.Always())
	require.NoError(t, err)

	assert.True(t, c.ShouldSample(context.Background()))
	c.Reset()
	assert.True(t, c.ShouldSample(context.Background()))
	assert.False(t, c.ShouldSample(context.Background()))
}
