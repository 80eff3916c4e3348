//go:build unix

package xfsop

import "golang.org/x/sys/unix"

// inodeOf 返回路径当前的 inode 号。路径不存在或 stat 失败时 ok 为 false。
func inodeOf(path string) (uint64, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, false
	}
	return uint64(st.Ino), true //nolint:unconvert // 部分平台 Ino 不是 uint64
}
