package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// containsNullByte 检测路径是否包含空字节。
func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// isWindowsAbsPath 检测 Windows 风格的绝对或驱动器相关路径。
// 非 Windows 平台上 filepath.IsAbs 不识别 "C:\..." 或 "\\server\..."，
// 需要显式检测以防止跨平台场景下绕过绝对路径拒绝策略。
//
// 拒绝的形式：
//   - 驱动器路径: "C:\..."、"C:/..."、驱动器相对路径 "C:foo"
//   - UNC 路径: "\\server\..."
//   - 根路径: "\Windows\..."
func isWindowsAbsPath(path string) bool {
	// 任何 "X:" 开头的路径一律拒绝，避免 Windows 驱动器语义歧义
	if len(path) >= 2 && isASCIILetter(path[0]) && path[1] == ':' {
		return true
	}
	// 反斜杠开头在 Windows 上是根路径或 UNC；Linux 上以反斜杠开头的
	// 文件名极为罕见，几乎总是跨平台拼接错误，统一拒绝。
	return len(path) >= 1 && path[0] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// hasDotDotSegment 检测路径中是否包含 ".." 作为独立路径段。
// 逐字符扫描，零内存分配；'/' 和 '\' 均视为分隔符，
// 以便在 Linux 上也能识别 Windows 风格的穿越写法。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		// 段恰好为 ".." 才算穿越，"..config" 这类文件名不受影响
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 对文件路径进行格式净化和规范化
//
// 安全边界：本函数仅做格式净化，不防护绝对路径访问。
// 如需将路径限制在特定目录内，请使用 [SafeJoin] 或 [SafeJoinWithOptions]。
//
// 拒绝的输入：
//   - 空路径、包含空字节的路径
//   - 含 ".." 独立路径段的路径（相对路径穿越）
//   - 以 "/" 或 "\" 结尾的路径（显式目录，不是文件）
//
// 注意：绝对路径会被接受，其中的 ".." 由 filepath.Clean 正常解析，
// 例如 "/var/log/../etc/app.log" -> "/etc/app.log"（合法绝对路径，非穿越）。
//
// 设计决策: 函数名中的 Sanitize 表示"格式净化"，不等同于"沙箱隔离"。
// 需要目录隔离语义的调用方应使用 SafeJoin。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}

	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}

	// 尾部分隔符检查必须在 filepath.Clean 之前，Clean 会移除尾部斜杠。
	//
	// 设计决策: Linux 上反斜杠是合法文件名字符，以 "\" 结尾理论上合法，
	// 但几乎总是 Windows 路径误传，为安全起见与 "/" 一并拒绝。
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)

	// 不能用 strings.Contains(cleaned, "..")——会误伤 "app..2024.log"
	// 这类合法文件名，按路径段精确判断。
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}

	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}

	return cleaned, nil
}

// SafeJoinOptions 安全路径拼接选项
type SafeJoinOptions struct {
	// ResolveSymlinks 是否解析符号链接。
	// 启用时使用 filepath.EvalSymlinks 解析真实路径，要求 base 目录必须存在。
	ResolveSymlinks bool
}

// SafeJoin 安全地将相对路径拼接到基准目录
//
// 与 SanitizePath 的区别：SanitizePath 只检查格式，SafeJoin 保证结果
// 始终落在 base 目录内（拒绝绝对路径、拒绝 ".." 穿越、验证拼接结果）。
//
// 符号链接警告：默认不解析符号链接。如果 base 内存在指向外部的符号链接
// （如 /var/log/evil -> /etc），SafeJoin("/var/log", "evil/passwd") 返回的
// 路径字符串虽以 base 为前缀，实际却指向 /etc/passwd。需要防护此类风险时
// 使用 [SafeJoinWithOptions] 并启用 ResolveSymlinks。
//
// 示例：
//
//	SafeJoin("/var/log", "app.log")       // -> "/var/log/app.log", nil
//	SafeJoin("/var/log", "../etc/passwd") // -> "", ErrPathTraversal
//	SafeJoin("/var/log", "/etc/passwd")   // -> "", ErrInvalidPath
//
// 设计决策: 默认不解析符号链接——启用解析要求 base 在文件系统上存在，
// 会破坏纯路径构建场景（配置阶段目录尚未创建）。
func SafeJoin(base, path string) (string, error) {
	return SafeJoinWithOptions(base, path, SafeJoinOptions{})
}

// SafeJoinWithOptions 带选项的安全路径拼接
//
// ResolveSymlinks 为 true 时，base 必须存在，函数会验证符号链接解析后的
// 真实路径仍在 base 内。
//
// 安全边界：本函数返回"经过验证的路径字符串"，不直接打开文件。检查与
// 实际 open/write 之间存在 TOCTOU 窗口，适用于可信环境下的路径构建
// （日志目录、配置路径），不能替代对抗性环境下的安全文件访问。
//
// 设计决策: 不提供基于 openat/O_NOFOLLOW 的原子化文件操作——那会把 xfile
// 从"路径工具库"变成"安全文件访问库"，超出本包职责。对抗性场景应结合
// 操作系统级目录权限控制。
func SafeJoinWithOptions(base, path string, opts SafeJoinOptions) (string, error) {
	cleanBase, err := validateBase(base)
	if err != nil {
		return "", err
	}

	cleanPath, err := validateRelPath(path)
	if err != nil {
		return "", err
	}

	joined, err := joinAndVerify(cleanBase, cleanPath)
	if err != nil {
		return "", err
	}

	if opts.ResolveSymlinks {
		return resolveAndVerifySymlinks(cleanBase, joined)
	}

	return joined, nil
}

// validateBase 验证并清理基准目录路径
func validateBase(base string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("base directory is required: %w", ErrEmptyPath)
	}
	if containsNullByte(base) {
		return "", fmt.Errorf("base contains null byte: %w", ErrNullByte)
	}
	cleanBase := filepath.Clean(base)
	if !filepath.IsAbs(cleanBase) {
		return "", fmt.Errorf("base must be an absolute path: %w", ErrInvalidPath)
	}
	return cleanBase, nil
}

// validateRelPath 验证并清理待拼接的相对路径
func validateRelPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required: %w", ErrEmptyPath)
	}
	if containsNullByte(path) {
		return "", fmt.Errorf("path contains null byte: %w", ErrNullByte)
	}
	if filepath.IsAbs(path) || isWindowsAbsPath(path) {
		return "", fmt.Errorf("path must be relative (absolute path not allowed): %w", ErrInvalidPath)
	}
	cleanPath := filepath.Clean(path)
	if hasDotDotSegment(cleanPath) {
		return "", fmt.Errorf("path traversal in path: %w", ErrPathTraversal)
	}
	return cleanPath, nil
}

// joinAndVerify 拼接路径并验证结果仍在 base 内
//
// 设计决策: filepath.Rel 对两个已清理的绝对路径不会返回错误，此处的
// 错误分支是防御性代码，防止标准库行为变更时出现静默安全漏洞。
func joinAndVerify(cleanBase, cleanPath string) (string, error) {
	joined := filepath.Join(cleanBase, cleanPath)
	rel, err := filepath.Rel(cleanBase, joined)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path (%v): %w", err, ErrPathEscaped)
	}
	if hasDotDotSegment(rel) {
		return "", ErrPathEscaped
	}
	return joined, nil
}

// resolveAndVerifySymlinks 解析符号链接并验证真实路径仍在 base 内
func resolveAndVerifySymlinks(cleanBase, joined string) (string, error) {
	realBase, err := filepath.EvalSymlinks(cleanBase)
	if err != nil {
		return "", fmt.Errorf("resolve base directory symlinks: %w: %w", ErrSymlinkResolution, err)
	}

	realJoined, err := evalSymlinksPartial(joined)
	if err != nil {
		return "", fmt.Errorf("resolve path symlinks: %w: %w", ErrSymlinkResolution, err)
	}

	rel, err := filepath.Rel(realBase, realJoined)
	if err != nil || hasDotDotSegment(rel) {
		return "", fmt.Errorf("resolved path escapes base directory: %w", ErrPathEscaped)
	}

	return realJoined, nil
}

// maxSymlinkDepth 是 evalSymlinksPartial 向上查找可解析祖先的最大层数。
const maxSymlinkDepth = 255

// evalSymlinksPartial 尽可能解析符号链接；对不存在的文件，解析其存在的
// 父目录部分，再把不存在的尾段拼回去。
//
// 符号链接循环：EvalSymlinks 对含循环的段返回 ELOOP，本函数会跳过该层
// 继续向上查找，返回的路径可能仍含未解析的循环段。实际风险很低：循环
// 在生产环境罕见，打开文件时 OS 会返回 ELOOP，且调用方仍会对返回路径
// 执行包含性检查。
func evalSymlinksPartial(path string) (string, error) {
	// 快速路径：整条路径都存在时直接解析
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}

	// 从叶向根逐层剥离不存在的段，找到最深的可解析祖先
	clean := filepath.Clean(path)
	var trail []string // 不存在的路径段，逆序收集

	current := clean
	for i := 0; ; i++ {
		if i > maxSymlinkDepth {
			return "", ErrPathTooDeep
		}

		dir := filepath.Dir(current)
		base := filepath.Base(current)

		if dir == current {
			// 设计决策: 已到根目录但 EvalSymlinks 仍失败（"/" 总是可解析，
			// 理论上不应发生），视为路径过深以确保循环终止。
			return "", ErrPathTooDeep
		}

		trail = append(trail, base)

		resolved, err = filepath.EvalSymlinks(dir)
		if err == nil {
			for j := len(trail) - 1; j >= 0; j-- {
				resolved = filepath.Join(resolved, trail[j])
			}
			return resolved, nil
		}

		current = dir
	}
}
