package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xprobe/pkg/context/xctx"
	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

func build(t *testing.T, b *xlog.Builder) xlog.LoggerWithLevel {
	t.Helper()
	logger, cleanup, err := b.Build()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, cleanup()) })
	return logger
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelWarn))
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")

	logger.SetLevel(xlog.LevelDebug)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
	assert.True(t, logger.Enabled(ctx, xlog.LevelDebug))
	logger.Debug(ctx, "now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLogger_DerivedSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetFormat("json").SetEnrich(false))

	child := logger.With(xlog.Target("orders")).WithGroup("call")
	logger.SetLevel(xlog.LevelError)
	child.Warn(context.Background(), "suppressed")
	assert.Empty(t, buf.String())

	logger.SetLevel(xlog.LevelInfo)
	child.Info(context.Background(), "visible", xlog.Method("Svc.Get()"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "orders", rec[xlog.KeyTarget])
	group, ok := rec["call"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Svc.Get()", group[xlog.KeyMethod])
}

func TestLogger_EnrichFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetFormat("json"))

	ctx, err := xctx.WithTrace(context.Background(), xctx.Trace{TraceID: "t-1", SpanID: "s-1"})
	require.NoError(t, err)
	logger.Info(ctx, "enriched")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "t-1", rec[xctx.KeyTraceID])
	assert.Equal(t, "s-1", rec[xctx.KeySpanID])
	assert.NotContains(t, rec, xctx.KeyRequestID)
}

func TestLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf))
	//nolint:staticcheck // nil ctx 必须被容忍
	logger.Info(nil, "nil ctx")
	assert.Contains(t, buf.String(), "nil ctx")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLogger_OnError(t *testing.T) {
	var got []error
	logger := build(t, xlog.New().SetOutput(failingWriter{}).SetOnError(func(err error) {
		got = append(got, err)
		panic("callback must not escape")
	}))

	assert.NotPanics(t, func() { logger.Info(context.Background(), "lost") })
	require.Len(t, got, 1)
	// 一次写入失败 + 一次回调 panic
	assert.Equal(t, uint64(2), xlog.ErrorCount(logger))
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *xlog.Builder
	}{
		{"bad level", xlog.New().SetLevelString("loud")},
		{"bad format", xlog.New().SetFormat("xml")},
		{"bad rotation", xlog.New().SetRotation("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, cleanup, err := tt.b.Build()
			assert.Error(t, err)
			assert.Nil(t, logger)
			assert.Nil(t, cleanup)
		})
	}
}

func TestBuilder_FirstErrorWins(t *testing.T) {
	_, _, err := xlog.New().SetFormat("xml").SetLevelString("loud").Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestBuilder_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.log")
	logger, cleanup, err := xlog.New().SetRotation(path).SetAttrs(slog.String("component", "xprobe")).Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "to file")
	require.NoError(t, cleanup())
	require.NoError(t, cleanup())
	assert.FileExists(t, path)
}

func TestBuilder_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == "token" {
			return slog.String("token", "***")
		}
		return a
	}))
	logger.Info(context.Background(), "secret", slog.String("token", "abc"))
	assert.Contains(t, buf.String(), "token=***")
	assert.NotContains(t, buf.String(), "abc")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    xlog.Level
		wantErr bool
	}{
		{"debug", xlog.LevelDebug, false},
		{" INFO ", xlog.LevelInfo, false},
		{"warning", xlog.LevelWarn, false},
		{"Error", xlog.LevelError, false},
		{"trace", xlog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := xlog.ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	var l xlog.Level
	require.NoError(t, l.UnmarshalText([]byte("warn")))
	assert.Equal(t, "WARN", l.String())
	assert.Error(t, l.UnmarshalText([]byte("loud")))
	assert.Equal(t, xlog.LevelWarn, l)
	assert.Equal(t, "INFO+2", (xlog.LevelInfo + 2).String())
}

func TestCallLevels_Outcome(t *testing.T) {
	levels := xlog.DefaultCallLevels()
	assert.Equal(t, xlog.LevelDebug, levels.Start)
	assert.Equal(t, xlog.LevelInfo, levels.Outcome(nil))
	assert.Equal(t, xlog.LevelWarn, levels.Outcome(errors.New("boom")))
	assert.Equal(t, xlog.LevelInfo, levels.Outcome(fmt.Errorf("wrapped: %w", context.Canceled)))
	assert.Equal(t, xlog.LevelWarn, levels.Outcome(context.DeadlineExceeded))

	levels.Canceled = xlog.LevelDebug
	assert.Equal(t, xlog.LevelDebug, levels.Outcome(context.Canceled))
}

func TestLogAt(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetFormat("json").SetLevel(xlog.LevelDebug))
	ctx := context.Background()

	xlog.LogAt(ctx, logger, xlog.LevelDebug-4, "below debug")
	xlog.LogAt(ctx, logger, xlog.LevelInfo, "info")
	xlog.LogAt(ctx, logger, xlog.LevelWarn+1, "between")
	xlog.LogAt(ctx, logger, xlog.LevelError+4, "above error")

	var got []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		got = append(got, rec["level"].(string)+" "+rec["msg"].(string))
	}
	assert.Equal(t, []string{"DEBUG below debug", "INFO info", "WARN between", "ERROR above error"}, got)
}

func TestAttrs(t *testing.T) {
	assert.Equal(t, slog.Attr{}, xlog.Err(nil))
	assert.Equal(t, "boom", xlog.Err(errors.New("boom")).Value.String())
	assert.Equal(t, "1.5ms", xlog.Duration(1500*time.Microsecond).Value.String())
	assert.Equal(t, xlog.KeyObserver, xlog.Observer("metrics").Key)
	assert.Equal(t, xlog.KeyPhase, xlog.Phase("before").Key)
	assert.Equal(t, xlog.KeyCallID, xlog.CallID("id").Key)
	assert.Equal(t, xlog.KeyStatus, xlog.Status("ok").Key)
}

func TestEnrichHandler_NilBase(t *testing.T) {
	h, err := xlog.NewEnrichHandler(nil)
	assert.Nil(t, h)
	assert.ErrorIs(t, err, xlog.ErrNilHandler)
}

func TestGlobal(t *testing.T) {
	t.Cleanup(xlog.ResetDefault)

	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug))
	xlog.SetDefault(logger)
	xlog.SetDefault(nil)
	assert.Same(t, logger, xlog.Default())

	ctx := context.Background()
	xlog.Debug(ctx, "g-debug")
	xlog.Info(ctx, "g-info")
	xlog.Warn(ctx, "g-warn")
	xlog.Error(ctx, "g-error")
	for _, want := range []string{"g-debug", "g-info", "g-warn", "g-error"} {
		assert.True(t, strings.Contains(buf.String(), want), want)
	}

	xlog.ResetDefault()
	assert.NotNil(t, xlog.Default())
	assert.NotSame(t, logger, xlog.Default())
}
