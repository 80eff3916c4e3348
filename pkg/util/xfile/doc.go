// Package xfile 提供路径安全检查和目录操作工具。
//
// # 路径安全函数对比
//
//   - SanitizePath: 检查路径格式，拒绝相对路径穿越，不限制目标目录
//   - SafeJoin: 确保结果路径始终在指定的 base 目录内，用于处理不可信输入
//   - SafeJoinWithOptions: SafeJoin 的增强版，支持符号链接解析
//
// # 路径穿越检测
//
// 穿越检测按路径段精确匹配，只有 ".." 作为独立路径段时才被拒绝，
// 以 ".." 开头的合法文件名不会被误判：
//
//	SafeJoin("/var/log", "..config")      // 合法 -> "/var/log/..config"
//	SafeJoin("/var/log", "../etc/passwd") // 拒绝 -> ErrPathTraversal
//
// # 空字节防护
//
// SanitizePath 和 SafeJoin 均拒绝包含空字节（\x00）的路径：Linux 内核
// 在 VFS 层会在空字节处截断路径，导致 Go 代码与 OS 看到的路径不一致。
//
// # URL 编码（前置条件）
//
// 本包处理文件系统路径，不做 URL 解码。"%2e%2e"、"%2f" 等编码序列被视为
// 普通文件名字符。输入来自 HTTP 请求时，调用方必须先完成 URL 解码。
//
// # 符号链接与 TOCTOU
//
// SafeJoin 默认不解析符号链接。base 目录内可能存在恶意符号链接时，
// 应使用 SafeJoinWithOptions 并启用 ResolveSymlinks。即便如此，本包
// 返回的是"经过验证的路径字符串"，检查与实际文件操作之间存在 TOCTOU
// 窗口，适用于可信环境下的路径构建，不能替代对抗性环境下的安全文件访问。
//
// # 错误处理
//
// 预定义错误变量支持 [errors.Is] 判断：
//
//	_, err := xfile.SafeJoin("/var/log", "../etc/passwd")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 处理路径穿越
//	}
package xfile
