package xfsop

import "strings"

// TempPattern 描述一类临时或备份文件的命名形态，按文件名（不含目录）
// 匹配。所有非空字段必须同时成立。
type TempPattern struct {
	// Prefix 文件名前缀。
	Prefix string
	// Suffix 文件名后缀。
	Suffix string
	// Exact 精确文件名；非空时忽略 Prefix/Suffix。
	Exact string
	// Opaque 为 true 表示无法从该形态推导目标文件名
	//（如 vim 的 4913 权限探测、GIO 的随机尾缀）。
	Opaque bool
}

// Match 报告文件名 base 是否符合该形态。
func (p TempPattern) Match(base string) bool {
	if base == "" {
		return false
	}
	if p.Exact != "" {
		return base == p.Exact
	}
	if p.Prefix == "" && p.Suffix == "" {
		return false
	}
	if p.Prefix != "" && !strings.HasPrefix(base, p.Prefix) {
		return false
	}
	if p.Suffix != "" && !strings.HasSuffix(base, p.Suffix) {
		return false
	}
	return true
}

// Target 从临时/备份名推导目标文件名。
// Opaque、Exact 或剥除前后缀后为空时 ok 为 false。
func (p TempPattern) Target(base string) (string, bool) {
	if p.Opaque || p.Exact != "" || !p.Match(base) {
		return "", false
	}
	target := strings.TrimPrefix(base, p.Prefix)
	target = strings.TrimSuffix(target, p.Suffix)
	if target == "" {
		return "", false
	}
	return target, true
}

// matchPattern 返回第一个命中 base 的形态。
func matchPattern(patterns []TempPattern, base string) (TempPattern, bool) {
	for _, p := range patterns {
		if p.Match(base) {
			return p, true
		}
	}
	return TempPattern{}, false
}

// defaultTempPatterns 常见编辑器与工具的临时文件形态：
//
//	name.tmp           通用临时后缀（k8s 原子写、安全写库）
//	.name.swp / .swx   vim 交换文件
//	.#name             emacs 锁文件
//	#name#             emacs 自动保存
//	4913               vim 的目录可写性探测（目标不可推导）
//	.goutputstream-*   GIO/GNOME 原子写，随机尾缀（目标不可推导）
func defaultTempPatterns() []TempPattern {
	return []TempPattern{
		{Suffix: ".tmp"},
		{Prefix: ".", Suffix: ".swp"},
		{Prefix: ".", Suffix: ".swx"},
		{Prefix: ".#"},
		{Prefix: "#", Suffix: "#"},
		{Exact: "4913", Opaque: true},
		{Prefix: ".goutputstream-", Opaque: true},
	}
}

// defaultBackupPatterns 常见备份文件形态（name~、.bak、.orig）。
func defaultBackupPatterns() []TempPattern {
	return []TempPattern{
		{Suffix: "~"},
		{Suffix: ".bak"},
		{Suffix: ".orig"},
	}
}
