package xfsop

import (
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// 归类选项
// =============================================================================

// ClassifyOption 定制归类使用的识别表。
type ClassifyOption func(*classifyOptions)

type classifyOptions struct {
	tempPatterns   []TempPattern
	backupPatterns []TempPattern
}

func defaultClassifyOptions() *classifyOptions {
	return &classifyOptions{
		tempPatterns:   defaultTempPatterns(),
		backupPatterns: defaultBackupPatterns(),
	}
}

// WithTempPatterns 追加临时文件形态，在内置表之后匹配。
func WithTempPatterns(patterns ...TempPattern) ClassifyOption {
	return func(o *classifyOptions) {
		o.tempPatterns = append(o.tempPatterns, patterns...)
	}
}

// WithBackupPatterns 追加备份文件形态，在内置表之后匹配。
func WithBackupPatterns(patterns ...TempPattern) ClassifyOption {
	return func(o *classifyOptions) {
		o.backupPatterns = append(o.backupPatterns, patterns...)
	}
}

// =============================================================================
// 窗口摘要
// =============================================================================

// nameInfo 聚合窗口内同一路径的事件特征。索引为 -1 表示未出现。
type nameInfo struct {
	name string // 完整路径
	dir  string
	base string
	ops  fsnotify.Op // 出现过的操作并集

	firstIdx    int
	lastIdx     int
	firstCreate int
	firstWrite  int
	firstRename int
	lastRename  int
	firstRemove int
}

func newNameInfo(name string) *nameInfo {
	dir, base := filepath.Split(name)
	return &nameInfo{
		name: name, dir: dir, base: base,
		firstIdx: -1, lastIdx: -1,
		firstCreate: -1, firstWrite: -1,
		firstRename: -1, lastRename: -1,
		firstRemove: -1,
	}
}

func (n *nameInfo) note(op fsnotify.Op, idx int) {
	n.ops |= op
	if n.firstIdx < 0 {
		n.firstIdx = idx
	}
	n.lastIdx = idx
	if op.Has(fsnotify.Create) && n.firstCreate < 0 {
		n.firstCreate = idx
	}
	if op.Has(fsnotify.Write) && n.firstWrite < 0 {
		n.firstWrite = idx
	}
	if op.Has(fsnotify.Rename) {
		if n.firstRename < 0 {
			n.firstRename = idx
		}
		n.lastRename = idx
	}
	if op.Has(fsnotify.Remove) && n.firstRemove < 0 {
		n.firstRemove = idx
	}
}

// roleName 临时/备份角色的路径及其推导出的目标文件名（不可推导为空）。
type roleName struct {
	info   *nameInfo
	target string
}

// =============================================================================
// 归类
// =============================================================================

// Classify 对一个事件窗口做纯启发式归类。不做任何 IO，不依赖 Tracker
// 状态；产出的 Operation 不含 ID（由投递层分配）。
//
// ok 为 false 时 Kind 为 [KindUnknown]，Events 仍会带回传入的窗口，
// 调用方可自行检视。纯新建文件（Create+Write，无临时/备份参与）、
// 纯删除、纯 Chmod 都不属于任何保存模式，归为 Unknown。
func Classify(events []fsnotify.Event, opts ...ClassifyOption) (Operation, bool) {
	o := defaultClassifyOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return classify(events, o)
}

// classify 是 Classify 的内核，Tracker 直接复用已构建好的选项。
func classify(events []fsnotify.Event, o *classifyOptions) (Operation, bool) {
	op := Operation{Kind: KindUnknown, Events: events, DetectedAt: time.Now()}
	if len(events) == 0 {
		return op, false
	}

	// 按路径聚合特征，保持首次出现顺序以保证确定性
	byName := make(map[string]*nameInfo)
	var infos []*nameInfo
	for i, ev := range events {
		info, ok := byName[ev.Name]
		if !ok {
			info = newNameInfo(ev.Name)
			byName[ev.Name] = info
			infos = append(infos, info)
		}
		info.note(ev.Op, i)
	}

	// 角色划分：临时 / 备份 / 真实
	var temps, backups []roleName
	var reals []*nameInfo
	for _, info := range infos {
		if p, ok := matchPattern(o.tempPatterns, info.base); ok {
			target, _ := p.Target(info.base)
			temps = append(temps, roleName{info: info, target: target})
			continue
		}
		if p, ok := matchPattern(o.backupPatterns, info.base); ok {
			target, _ := p.Target(info.base)
			backups = append(backups, roleName{info: info, target: target})
			continue
		}
		reals = append(reals, info)
	}
	if len(reals) == 0 {
		// 全是临时/备份噪声（如 vim 的 4913 探测），没有可归类的目标
		return op, false
	}

	// 最近活跃的真实文件优先作为目标候选；lastIdx 全局唯一，排序确定
	sort.Slice(reals, func(i, j int) bool {
		return reals[i].lastIdx > reals[j].lastIdx
	})

	for _, target := range reals {
		if cand, ok := classifyTarget(target, temps, backups, reals); ok {
			cand.Events = events
			cand.DetectedAt = op.DetectedAt
			return cand, true
		}
	}
	return op, false
}

// classifyTarget 以 t 为目标尝试每种保存模式，按特异性从高到低。
func classifyTarget(t *nameInfo, temps, backups []roleName, reals []*nameInfo) (Operation, bool) {
	op := Operation{Path: t.name}

	// 原子保存：目标以 Create 形式出现（rename 落地即 MOVED_TO），
	// 此前有临时文件被 rename 挪走。目标自身不应有 Rename。
	if t.firstCreate >= 0 && t.firstRename < 0 {
		var opaque *roleName
		for i := range temps {
			x := &temps[i]
			if x.info.dir != t.dir || x.info.lastRename < 0 ||
				x.info.lastRename >= t.firstCreate {
				continue
			}
			if x.target == t.base {
				// 临时名可推导且指向目标，形态完整
				op.Kind = KindAtomicSave
				op.TempPath = x.info.name
				op.Confidence = 0.9
				return op, true
			}
			if x.target == "" && opaque == nil {
				opaque = x
			}
		}
		if opaque != nil {
			op.Kind = KindAtomicSave
			op.TempPath = opaque.info.name
			op.Confidence = 0.75
			return op, true
		}
		// 兜底：表外的草稿名同样呈现 写 → rename → 目标出现 的形态
		for _, x := range reals {
			if x == t || x.dir != t.dir {
				continue
			}
			if x.lastRename < 0 || x.lastRename != x.lastIdx ||
				x.lastRename >= t.firstCreate {
				continue
			}
			if x.ops&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			op.Kind = KindAtomicSave
			op.TempPath = x.name
			op.Confidence = 0.65
			return op, true
		}
	}

	// 安全替换：目标先被 rename 挪开，随后在原路径重新出现
	if t.firstRename >= 0 && t.firstCreate > t.firstRename {
		op.Kind = KindSafeWriteReplace
		op.Confidence = 0.7
		for i := range backups {
			b := &backups[i]
			if b.info.dir == t.dir && b.target == t.base &&
				b.info.firstCreate > t.firstRename {
				// 挪开动作落到了可识别的备份名上
				op.BackupPath = b.info.name
				op.Confidence = 0.85
				break
			}
		}
		return op, true
	}

	// 删除重建：Remove 之后同路径 Create
	if t.firstRemove >= 0 && t.firstCreate > t.firstRemove {
		op.Kind = KindDeleteRecreate
		op.Confidence = 0.85
		return op, true
	}

	// 目标无结构性事件：备份后保存或原地写入
	if t.firstWrite >= 0 && t.firstCreate < 0 && t.firstRename < 0 && t.firstRemove < 0 {
		for i := range backups {
			b := &backups[i]
			if b.info.dir == t.dir && b.target == t.base &&
				b.info.ops&(fsnotify.Create|fsnotify.Write) != 0 &&
				b.info.firstIdx < t.firstWrite {
				op.Kind = KindBackupThenSave
				op.BackupPath = b.info.name
				op.Confidence = 0.8
				return op, true
			}
		}
		op.Kind = KindInPlaceWrite
		op.Confidence = 0.95
		return op, true
	}

	// 纯重命名：被挪走之后再无动静
	if t.firstRename >= 0 &&
		t.ops&(fsnotify.Create|fsnotify.Write|fsnotify.Remove) == 0 {
		op.Kind = KindRename
		op.Confidence = 0.6
		return op, true
	}

	return Operation{}, false
}
