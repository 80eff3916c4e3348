package xdbg

import (
	"os/user"
	"strconv"
)

// IdentityInfo 对端凭证加上解析出的用户名/组名，用于日志输出。
type IdentityInfo struct {
	*PeerIdentity

	// Username 用户名；查找失败时为空。
	Username string

	// Groupname 组名；查找失败时为空。
	Groupname string
}

// resolveIdentity 把数字凭证解析成可读身份。peer 为 nil 时返回空身份。
func resolveIdentity(peer *PeerIdentity) *IdentityInfo {
	info := &IdentityInfo{PeerIdentity: peer}
	if peer == nil {
		return info
	}
	if u, err := user.LookupId(strconv.FormatUint(uint64(peer.UID), 10)); err == nil {
		info.Username = u.Username
	}
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(peer.GID), 10)); err == nil {
		info.Groupname = g.Name
	}
	return info
}

// String 返回 "user(group) pid=N" 形式的身份描述。
func (i *IdentityInfo) String() string {
	if i == nil || i.PeerIdentity == nil {
		return "unknown"
	}
	username := i.Username
	if username == "" {
		username = "uid=" + strconv.FormatUint(uint64(i.UID), 10)
	}
	groupname := i.Groupname
	if groupname == "" {
		groupname = "gid=" + strconv.FormatUint(uint64(i.GID), 10)
	}
	return username + "(" + groupname + ") pid=" + strconv.FormatInt(int64(i.PID), 10)
}
