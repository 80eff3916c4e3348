package xid

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"net/netip"
	"os"
	"strconv"
)

// 测试注入点：替换系统调用以覆盖错误分支。
var (
	osHostname        = os.Hostname
	netInterfaceAddrs = net.InterfaceAddrs
)

// EnvMachineID 直接指定机器 ID 的环境变量（十进制，0-65535）。
const EnvMachineID = "XID_MACHINE_ID"

// DefaultMachineID 获取机器 ID，按以下优先级：
//
//  1. XID_MACHINE_ID 环境变量（显式分配，唯一可控的方式）
//  2. os.Hostname() 的 FNV-1a 哈希折叠为 16 位
//  3. 私有 IPv4 地址的低 16 位（sonyflake 的默认方式）
//
// 哈希与 IP 策略均存在碰撞可能（生日悖论：100 节点约 7% 概率），
// 多实例部署建议通过 XID_MACHINE_ID 显式分配。
func DefaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("xid: invalid %s value %q: %w", EnvMachineID, s, err)
		}
		return uint16(id), nil
	}

	// 主机名策略返回 error 而非 bool：os.Hostname 的系统错误（容器内核限制等）
	// 有诊断价值，全链路失败时聚合进最终错误。
	hostnameID, hostnameErr := machineIDFromHostname()
	if hostnameErr == nil {
		return hostnameID, nil
	}

	id, err := machineIDFromPrivateIP()
	if err != nil {
		return 0, fmt.Errorf("xid: all machine ID strategies exhausted (hostname: %v): %w", hostnameErr, err)
	}
	return id, nil
}

// machineIDFromHostname 将 os.Hostname() 哈希为机器 ID。
func machineIDFromHostname() (uint16, error) {
	hostname, err := osHostname()
	if err != nil {
		return 0, err
	}
	if hostname == "" {
		return 0, errors.New("os.Hostname returned empty string")
	}
	return hashToMachineID(hostname), nil
}

// machineIDFromPrivateIP 取私有 IPv4 地址的低 16 位。
// net.InterfaceAddrs 的枚举顺序依赖操作系统，多网卡环境重启后
// 机器 ID 可能变化。
func machineIDFromPrivateIP() (uint16, error) {
	ip, err := privateIPv4()
	if err != nil {
		return 0, err
	}
	b := ip.As4()
	return uint16(b[2])<<8 + uint16(b[3]), nil
}

// hashToMachineID 用 FNV-1a 把字符串压缩为 16 位机器 ID。
// XOR 折叠高低半段，比单纯截断低 16 位分布更均匀。
func hashToMachineID(s string) uint16 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s)) // hash.Hash.Write 不返回错误
	b := h.Sum(nil)           // 4 字节大端序
	hi := uint16(b[0])<<8 | uint16(b[1])
	lo := uint16(b[2])<<8 | uint16(b[3])
	return hi ^ lo
}

// privateIPv4 返回第一个私有（或链路本地）IPv4 地址。
func privateIPv4() (netip.Addr, error) {
	addrs, err := netInterfaceAddrs()
	if err != nil {
		return netip.Addr{}, err
	}

	for _, addr := range addrs {
		ipnet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(ipnet.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if ip.IsLoopback() || !ip.Is4() {
			continue
		}
		if isPrivateIPv4(ip) {
			return ip, nil
		}
	}

	return netip.Addr{}, ErrNoPrivateAddress
}

// isPrivateIPv4 判断是否为 RFC1918 私有地址或 RFC3927 链路本地地址。
func isPrivateIPv4(ip netip.Addr) bool {
	ip = ip.Unmap()
	if !ip.Is4() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast()
}
