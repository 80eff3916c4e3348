// Package xfsop 把零散的 fsnotify 事件窗口归类为高层文件操作。
//
// 编辑器和配置管理器保存文件的方式五花八门：原子保存（写临时文件后
// rename 覆盖）、安全替换（旧文件先挪成备份再写新文件）、备份后保存、
// 删除重建、原地写入。直接消费 fsnotify 的调用方不得不自己拼凑这些
// 模式；本包把拼凑收敛成三层：
//
//   - [Classify]：纯函数，对一个事件窗口做启发式归类，产出 [Operation]
//     （类型、目标路径、临时/备份路径、置信度）
//   - [Tracker]：把乱序事件按 (目录, 目标文件) 汇成滑动窗口，静默期满
//     结算并回调；临时/备份文件的事件自动归并到推导出的目标窗口
//   - [Watcher]：fsnotify 目录监视 + Tracker 管线 + Operations 通道；
//     unix 上结算后用 inode 变化交叉验证替换类操作
//
// # 置信度
//
// 归类是启发式而非证明：Confidence 表达模式形态的完整程度（0–1）。
// 形态完整的原子保存 0.9，表外草稿名的兜底识别 0.65，原地写入 0.95。
// Watcher 的 inode 确认最多再上调 0.1。调用方按自身风险偏好设阈值。
//
// # 用法
//
//	w, err := xfsop.NewWatcher([]string{"/etc/myapp"})
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	for op := range w.Operations() {
//		if op.Kind == xfsop.KindAtomicSave && op.Confidence >= 0.9 {
//			reload(op.Path)
//		}
//	}
//
// # 识别表
//
// 临时/备份命名形态是数据驱动的（[TempPattern]），内置表覆盖 vim、
// emacs、GIO 与通用 .tmp/.bak 约定，经 [WithTempPatterns] /
// [WithBackupPatterns] 扩展。表同时约束 Tracker 的事件归并：可推导
// 目标的临时名直接归入目标窗口，不可推导的挂目录待定窗口。
//
// 设计决策: 纯新建文件（Create+Write，无临时/备份参与）不属于任何
// 保存模式，归为 [KindUnknown]——关心它的调用方用 [WithEmitUnknown]
// 接收未归类窗口自行判断，而不是让检测器猜测语义。
package xfsop
