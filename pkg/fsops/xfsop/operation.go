package xfsop

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation 一次从事件窗口归类出的高层文件操作。
type Operation struct {
	// ID 操作的全局唯一标识。[Classify] 的裸结果为空，
	// 由 Tracker / Watcher 在投递前分配（默认 xid）。
	ID string

	// Kind 操作类型。
	Kind Kind

	// Path 最终目标文件的完整路径。KindRename 时是被挪走的旧路径。
	Path string

	// TempPath 参与原子保存的临时文件路径，仅 KindAtomicSave 填充。
	TempPath string

	// BackupPath 备份文件路径，KindSafeWriteReplace / KindBackupThenSave
	// 识别到备份参与时填充。
	BackupPath string

	// Events 归类所依据的原始事件窗口，按到达顺序。
	// 直接引用归类时传入的切片，不做拷贝。
	Events []fsnotify.Event

	// Confidence 归类置信度，[0, 1]。模式形态越完整越高；
	// Watcher 的 inode 确认可在此基础上再上调。
	Confidence float64

	// DetectedAt 窗口结算（归类）时刻。
	DetectedAt time.Time
}
