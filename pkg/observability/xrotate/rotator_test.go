package xrotate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLumberjack_Validation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "calls.log")

	tests := []struct {
		name    string
		file    string
		opts    []Option
		wantErr error
	}{
		{"空文件名", "", nil, ErrEmptyFilename},
		{"体积为 0", file, []Option{WithMaxSize(0)}, ErrInvalidMaxSize},
		{"体积过大", file, []Option{WithMaxSize(maxSizeLimitMB + 1)}, ErrInvalidMaxSize},
		{"备份数为负", file, []Option{WithMaxBackups(-1)}, ErrInvalidMaxBackups},
		{"天数过大", file, []Option{WithMaxAge(maxAgeLimitDays + 1)}, ErrInvalidMaxAge},
		{"无清理策略", file, []Option{WithMaxBackups(0), WithMaxAge(0)}, ErrNoCleanupPolicy},
		{"默认值", file, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewLumberjack(tt.file, tt.opts...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			require.NoError(t, r.Close())
		})
	}
}

func TestLumberjack_WriteRotateClose(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "calls.log")

	r, err := NewLumberjack(file, WithCompress(false), WithLocalTime(true))
	require.NoError(t, err)

	n, err := r.Write([]byte("first\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	require.NoError(t, r.Rotate())
	_, err = r.Write([]byte("second\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "轮转后应有一个备份文件")

	require.NoError(t, r.Close())
	assert.ErrorIs(t, r.Close(), ErrClosed)
	_, err = r.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, r.Rotate(), ErrClosed)
}
