package xcall_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/omeyang/xprobe/pkg/intercept/xcall"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

func newJSONLogger(t *testing.T) (xlog.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetFormat("json").SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger, &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		out = append(out, m)
	}
	return out
}

func TestLogReporter_Fields(t *testing.T) {
	t.Parallel()

	logger, buf := newJSONLogger(t)
	r := xcall.NewLogReporter(logger)
	d := newDesc()

	r.Report(context.Background(), &xcall.ObserverError{
		Kind: xcall.KindBefore, Observer: "metrics", Call: d, Err: errors.New("boom"),
	})
	r.Report(context.Background(), nil)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "xcall: observer failed", line["msg"])
	assert.Equal(t, "metrics", line[xlog.KeyObserver])
	assert.Equal(t, "before", line[xlog.KeyPhase])
	assert.Equal(t, "boom", line[xlog.KeyError])
	assert.Equal(t, "svc", line[xlog.KeyTarget])
	assert.Equal(t, "Calc.Double(int)", line[xlog.KeyMethod])
	assert.Equal(t, d.ID(), line[xlog.KeyCallID])
	assert.Equal(t, xcall.ReporterStats{Reported: 1}, r.Stats())
}

func TestLogReporter_RateLimited(t *testing.T) {
	t.Parallel()

	logger, buf := newJSONLogger(t)
	r := xcall.NewLogReporter(logger, xcall.WithRateLimit(rate.Limit(0), 2))

	for range 5 {
		r.Report(context.Background(), &xcall.ObserverError{Kind: xcall.KindAfter, Observer: "o", Err: errors.New("x")})
	}
	// 接线缺陷不受限流影响。
	for range 3 {
		r.Report(context.Background(), &xcall.ObserverError{Kind: xcall.KindMalformed, Observer: "c", Err: xcall.ErrDoubleCompletion})
	}

	stats := r.Stats()
	assert.Equal(t, uint64(5), stats.Reported)
	assert.Equal(t, uint64(3), stats.Suppressed)

	var warn, errCount int
	for _, line := range decodeLines(t, buf) {
		switch line["level"] {
		case "WARN":
			warn++
		case "ERROR":
			errCount++
			assert.Equal(t, "xcall: malformed call context", line["msg"])
		}
	}
	assert.Equal(t, 2, warn)
	assert.Equal(t, 3, errCount)
}

func TestLogReporter_Unlimited(t *testing.T) {
	t.Parallel()

	logger, _ := newJSONLogger(t)
	r := xcall.NewLogReporter(logger, xcall.WithRateLimit(rate.Inf, 0), nil)
	for range 100 {
		//nolint:staticcheck // 验证 nil ctx 的兜底
		r.Report(nil, &xcall.ObserverError{Kind: xcall.KindAfter, Observer: "o", Err: errors.New("x")})
	}
	assert.Equal(t, uint64(100), r.Stats().Reported)
	assert.Zero(t, r.Stats().Suppressed)
}

func TestLogReporter_ThroughSite(t *testing.T) {
	t.Parallel()

	logger, buf := newJSONLogger(t)
	reporter := xcall.NewLogReporter(logger, xcall.WithReportInterval(0, 10))
	site := xcall.NewBuilder().Target("svc").
		Observe(&recorder{name: "a", beforeErr: errors.New("a")}, &recorder{name: "b", afterErr: errors.New("b")}).
		Reporter(reporter).Build()

	_, err := xcall.Wrap1(site, testSig, double)(context.Background(), 1)
	require.NoError(t, err)

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0][xlog.KeyObserver])
	assert.Equal(t, "before", lines[0][xlog.KeyPhase])
	assert.Equal(t, "b", lines[1][xlog.KeyObserver])
	assert.Equal(t, "after", lines[1][xlog.KeyPhase])
}
