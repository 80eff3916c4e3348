package xfsop

import "errors"

var (
	// ErrClosed Tracker/Watcher 已关闭。
	ErrClosed = errors.New("xfsop: closed")

	// ErrNilHandler NewTracker 收到 nil 回调。
	ErrNilHandler = errors.New("xfsop: nil handler")

	// ErrNoPaths NewWatcher 收到空路径列表。
	ErrNoPaths = errors.New("xfsop: no watch paths")

	// ErrNotDirectory 监视根不是目录。本包按目录监视——归类依赖
	// 同目录下临时/备份文件的关联事件。
	ErrNotDirectory = errors.New("xfsop: watch path is not a directory")

	// ErrWatchFailed 底层 fsnotify 创建或添加监视失败。
	ErrWatchFailed = errors.New("xfsop: watch failed")

	// ErrInvalidWindow 窗口静默期不合法（必须为正）。
	ErrInvalidWindow = errors.New("xfsop: invalid window duration")

	// ErrInvalidMaxPaths 活动窗口上限不合法（必须为正且不超过底层缓存上限）。
	ErrInvalidMaxPaths = errors.New("xfsop: invalid max paths")

	// ErrInvalidShardCount 分片数不合法（必须为 2 的幂）。
	ErrInvalidShardCount = errors.New("xfsop: invalid shard count")

	// ErrNilIDFunc WithIDFunc 收到 nil。
	ErrNilIDFunc = errors.New("xfsop: nil id func")

	// ErrInvalidBuffer 通道缓冲大小不合法（必须为正）。
	ErrInvalidBuffer = errors.New("xfsop: invalid buffer size")
)
