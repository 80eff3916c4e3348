package xfsop

// Kind 标识一次高层文件操作的类型。
type Kind int

const (
	// KindUnknown 事件窗口不符合任何已知保存模式。
	KindUnknown Kind = iota

	// KindAtomicSave 原子保存：写临时文件后 rename 覆盖目标
	//（vim 的 writebackup、k8s ConfigMap 投射、大多数"安全写"库）。
	KindAtomicSave

	// KindSafeWriteReplace 安全替换：旧目标先被 rename 成备份，
	// 再在原路径写出新文件（vim 默认 backupcopy=auto 的另一分支）。
	KindSafeWriteReplace

	// KindBackupThenSave 备份后保存：先复制出备份（target~ / .bak），
	// 再原地写目标（emacs 默认备份策略）。
	KindBackupThenSave

	// KindInPlaceWrite 原地写入：目标只有 Write，没有任何结构性事件。
	KindInPlaceWrite

	// KindDeleteRecreate 删除重建：Remove 后在同一路径 Create（+Write）。
	KindDeleteRecreate

	// KindRename 纯重命名：目标被 rename 挪走后再无后续写入。
	KindRename
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindAtomicSave:       "atomic_save",
	KindSafeWriteReplace: "safe_write_replace",
	KindBackupThenSave:   "backup_then_save",
	KindInPlaceWrite:     "in_place_write",
	KindDeleteRecreate:   "delete_recreate",
	KindRename:           "rename",
}

// String 返回蛇形命名的类型标识，适合日志与指标标签。
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
