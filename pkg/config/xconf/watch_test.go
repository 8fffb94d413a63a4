package xconf_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/xprobe/pkg/config/xconf"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatch_Reloads(t *testing.T) {
	path := writeFile(t, "xprobe.yaml", sampleYAML)
	cfg, err := xconf.Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- cfg.Watch(ctx, func(_ *xconf.Config, err error) {
			if err == nil {
				reloads.Add(1)
			}
		}, xconf.WithDebounce(20*time.Millisecond))
	}()

	// 等待目录监视建立
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("instrument:\n  enabled: false\n"), 0o600))

	assert.Eventually(t, func() bool {
		v, ok := cfg.Bool("instrument.enabled")
		return ok && !v
	}, 2*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_NotReloadable(t *testing.T) {
	cfg, err := xconf.Parse(nil, xconf.FormatYAML)
	require.NoError(t, err)
	assert.ErrorIs(t, cfg.Watch(context.Background(), nil), xconf.ErrNotReloadable)
}
