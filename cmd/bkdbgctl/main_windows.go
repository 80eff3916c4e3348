//go:build windows

// 设计决策: bkdbgctl 不支持 Windows 平台。
// bkdbgctl 依赖 Unix Domain Socket（进程间通信），
// 在 Windows 上没有直接等价实现。
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "bkdbgctl: 不支持 Windows 平台（依赖 Unix Domain Socket）")
	os.Exit(1)
}
