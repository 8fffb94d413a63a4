package xrotate

import (
	"errors"
	"io"
)

// 配置校验与运行期错误。
var (
	// ErrEmptyFilename 文件名为空。
	ErrEmptyFilename = errors.New("xrotate: filename is required")

	// ErrInvalidMaxSize MaxSize 不在 1~10240 MB 范围内。
	ErrInvalidMaxSize = errors.New("xrotate: invalid max size")

	// ErrInvalidMaxBackups MaxBackups 不在 0~1024 范围内。
	ErrInvalidMaxBackups = errors.New("xrotate: invalid max backups")

	// ErrInvalidMaxAge MaxAge 不在 0~3650 天范围内。
	ErrInvalidMaxAge = errors.New("xrotate: invalid max age")

	// ErrNoCleanupPolicy MaxBackups 与 MaxAge 同时为 0，旧文件将无限堆积。
	ErrNoCleanupPolicy = errors.New("xrotate: no cleanup policy configured")

	// ErrClosed 轮转器已关闭。
	ErrClosed = errors.New("xrotate: rotator is closed")
)

// Rotator 可轮转的日志写入器，并发安全。
//
// Close 后 Write 与 Rotate 返回 ErrClosed。
type Rotator interface {
	io.WriteCloser

	// Rotate 立即关闭当前文件并开始新文件。
	Rotate() error
}
