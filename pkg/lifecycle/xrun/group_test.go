package xrun

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xprobe/pkg/observability/xlog"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func quietLogger(t *testing.T) xlog.Logger {
	t.Helper()
	logger, cleanup, err := xlog.New().SetOutput(io.Discard).Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return logger
}

func TestGroup_Empty(t *testing.T) {
	g, _ := NewGroup(context.Background())
	assert.NoError(t, g.Wait())
}

func TestGroup_ErrorCancelsOthers(t *testing.T) {
	errTrigger := errors.New("trigger")
	var stopped atomic.Bool

	g, ctx := NewGroup(context.Background(), WithLogger(quietLogger(t)), WithName("test"))
	g.GoWithName("waiter", func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Store(true)
		return ctx.Err()
	})
	g.GoWithName("failer", func(context.Context) error { return errTrigger })

	assert.ErrorIs(t, g.Wait(), errTrigger)
	assert.True(t, stopped.Load())
	assert.Error(t, ctx.Err())
}

func TestGroup_CancelCause(t *testing.T) {
	errShutdown := errors.New("shutdown requested")

	g, _ := NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.Cancel(errShutdown)
	assert.ErrorIs(t, g.Wait(), errShutdown)

	// 无显式原因的取消视为正常结束。
	g, _ = NewGroup(context.Background())
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	g.Cancel(nil)
	assert.NoError(t, g.Wait())
}

func TestGroup_ParentCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := NewGroup(ctx, nil)
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	cancel()
	assert.NoError(t, g.Wait())
	assert.Same(t, gctx, g.Context())
}

func TestGroup_InternalCanceledNotFiltered(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestGroup_NilFunc(t *testing.T) {
	g, _ := NewGroup(context.Background())
	g.Go(nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)

	g, _ = NewGroup(context.Background())
	g.GoWithName("nil", nil)
	assert.ErrorIs(t, g.Wait(), ErrNilFunc)
}

func TestGroup_Signal(t *testing.T) {
	g, _ := NewGroup(context.Background(), WithLogger(quietLogger(t)))
	ch := make(chan os.Signal, 1)
	g.Go(func(ctx context.Context) error { return g.awaitSignal(ctx, ch) })
	g.Go(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	ch <- syscall.SIGTERM

	err := g.Wait()
	require.ErrorIs(t, err, ErrSignal)
	var sigErr *SignalError
	require.ErrorAs(t, err, &sigErr)
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
	assert.Contains(t, err.Error(), "terminated")
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, []Option{WithSignals(syscall.SIGUSR2), WithLogger(quietLogger(t))},
		func(ctx context.Context) error {
			ran.Store(true)
			<-ctx.Done()
			return ctx.Err()
		})
	assert.NoError(t, err)
	assert.True(t, ran.Load())

	assert.NoError(t, Run(context.Background(), []Option{WithoutSignalHandler()},
		func(context.Context) error { return nil }))
}

func TestTicker(t *testing.T) {
	t.Run("无效参数", func(t *testing.T) {
		assert.ErrorIs(t, Ticker(0, false, func(context.Context) error { return nil })(context.Background()), ErrInvalidInterval)
		assert.ErrorIs(t, Ticker(time.Second, false, nil)(context.Background()), ErrNilFunc)
	})

	t.Run("立即执行后周期执行", func(t *testing.T) {
		errStop := errors.New("stop")
		var n atomic.Int32
		err := Ticker(time.Millisecond, true, func(context.Context) error {
			if n.Add(1) == 3 {
				return errStop
			}
			return nil
		})(context.Background())
		assert.ErrorIs(t, err, errStop)
		assert.Equal(t, int32(3), n.Load())
	})

	t.Run("已取消的 ctx 不执行", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var ran bool
		err := Ticker(time.Millisecond, true, func(context.Context) error {
			ran = true
			return nil
		})(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, ran)
	})
}

func TestHTTPServer(t *testing.T) {
	assert.ErrorIs(t, HTTPServer(nil, nil, 0)(context.Background()), ErrNilServer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{
		Handler:           http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }),
		ReadHeaderTimeout: time.Second,
	}

	g, _ := NewGroup(context.Background())
	g.Go(HTTPServer(srv, ln, time.Second))

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	g.Cancel(nil)
	assert.NoError(t, g.Wait())
	http.DefaultClient.CloseIdleConnections()
}

func TestHTTPServer_ListenerClosed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = HTTPServer(&http.Server{ReadHeaderTimeout: time.Second}, ln, 0)(context.Background())
	assert.Error(t, err)
}
