package xfsop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/basekit/pkg/observability/xlog"
	"github.com/omeyang/basekit/pkg/util/xfile"
	"github.com/omeyang/basekit/pkg/util/xlru"
)

// Watcher 监视一组目录，把 fsnotify 事件流经 [Tracker] 汇成高层
// [Operation]，投递到 Operations 通道。
//
// 构造即启动，没有单独的 Start（与 fsnotify 一致）。Close 冲刷剩余
// 窗口、关闭两个通道并释放全部资源。投递是非阻塞的：缓冲写满时丢弃
// 并告警，消费方长期不取走是使用错误。
type Watcher struct {
	fsw     *fsnotify.Watcher
	tracker *Tracker
	ops     chan Operation
	errs    chan error
	inodes  *xlru.Cache[string, uint64]
	logger  xlog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	eg     *errgroup.Group

	closeOnce sync.Once
	closeErr  error
}

// NewWatcher 创建并启动 Watcher。paths 必须是已存在的目录（不带尾部
// 分隔符，经 xfile 净化）；事件管线在返回前即开始运行。
func NewWatcher(paths []string, opts ...WatcherOption) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	o := defaultWatcherOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		root, err := xfile.SanitizePath(p)
		if err != nil {
			return nil, fmt.Errorf("xfsop: watch root %q: %w", p, err)
		}
		st, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("xfsop: watch root %q: %w", root, err)
		}
		if !st.IsDir() {
			return nil, fmt.Errorf("%w: %q", ErrNotDirectory, root)
		}
		roots = append(roots, root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)
	w := &Watcher{
		fsw:    fsw,
		ops:    make(chan Operation, o.opBuffer),
		errs:   make(chan error, o.errBuffer),
		ctx:    egCtx,
		cancel: cancel,
		eg:     eg,
	}

	tracker, err := NewTracker(w.dispatch, o.trackerOpts...)
	if err != nil {
		cancel()
		_ = fsw.Close()
		return nil, err
	}
	w.tracker = tracker
	w.logger = tracker.opts.logger

	inodes, err := xlru.New[string, uint64](tracker.opts.maxPaths)
	if err != nil {
		cancel()
		_ = fsw.Close()
		_ = tracker.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidMaxPaths, err)
	}
	w.inodes = inodes

	for _, root := range roots {
		if err := fsw.Add(root); err != nil {
			werr := fmt.Errorf("%w: add %q: %w", ErrWatchFailed, root, err)
			_ = w.Close()
			return nil, werr
		}
	}

	eg.Go(w.runEvents)
	eg.Go(w.runErrors)
	return w, nil
}

// Operations 返回操作投递通道，Close 时关闭。
func (w *Watcher) Operations() <-chan Operation {
	return w.ops
}

// Errors 返回底层监视错误通道（对应 fsnotify 的 Errors），Close 时关闭。
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// runEvents 把 fsnotify 事件喂给 Tracker。
func (w *Watcher) runEvents() error {
	for {
		select {
		case <-w.ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if err := w.tracker.Feed(ev); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				w.sendErr(err)
			}
		}
	}
}

// runErrors 转发底层监视错误。
func (w *Watcher) runErrors() error {
	for {
		select {
		case <-w.ctx.Done():
			return nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.sendErr(fmt.Errorf("%w: %w", ErrWatchFailed, err))
		}
	}
}

// sendErr 非阻塞投递错误，缓冲满则丢弃并告警。
func (w *Watcher) sendErr(err error) {
	select {
	case w.errs <- err:
	default:
		if w.logger != nil {
			w.logger.Warn(w.ctx, "watch error dropped: error channel full",
				xlog.Err(err))
		}
	}
}

// dispatch 是内部 Tracker 的 handler：补上 inode 确认后非阻塞投递。
// 运行在 Tracker 的结算 goroutine 上，不得阻塞。
func (w *Watcher) dispatch(op Operation) {
	w.confirmInode(&op)
	select {
	case w.ops <- op:
	default:
		if w.logger != nil {
			w.logger.Warn(w.ctx, "operation dropped: channel full",
				slog.String("path", op.Path),
				slog.String("kind", op.Kind.String()))
		}
	}
}

// confirmInode 用目标当前 inode 与历史值交叉验证替换类归类：文件被
// 整体替换（原子保存/安全替换/删除重建）时 inode 必然改变，观测到
// 改变即上调置信度。非 unix 平台 inodeOf 恒为 miss，静默跳过。
func (w *Watcher) confirmInode(op *Operation) {
	ino, ok := inodeOf(op.Path)
	prev, had := w.inodes.Peek(op.Path)
	if ok {
		w.inodes.Set(op.Path, ino)
	} else {
		w.inodes.Delete(op.Path)
	}
	if !replacesInode(op.Kind) || !ok || !had {
		return
	}
	if prev != ino {
		op.Confidence = min(op.Confidence+0.1, 1.0)
	}
}

// replacesInode 报告该类操作是否以新 inode 替换目标文件。
func replacesInode(k Kind) bool {
	switch k {
	case KindAtomicSave, KindSafeWriteReplace, KindDeleteRecreate:
		return true
	default:
		return false
	}
}

// Close 停止监视、冲刷剩余窗口并关闭两个通道。幂等。
// 冲刷出的 Operation 在通道关闭前尽力投递（缓冲满则丢弃）。
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		err := w.fsw.Close()
		w.cancel()
		_ = w.eg.Wait()
		_ = w.tracker.Close()
		close(w.ops)
		close(w.errs)
		w.inodes.Close()
		w.closeErr = err
	})
	return w.closeErr
}
