package xlock

import (
	"bytes"
	"runtime"
	"strconv"
)

// goid 返回当前 goroutine 的 id，解析自 runtime.Stack 的首行
// （"goroutine 123 [running]:"）。解析失败返回 0。
//
// 设计决策: goroutine id 绝不参与重入判定（重入跟随 context 传播的
// 获取栈），只作为诊断信息写入状态快照与长持有告警——它与运行时
// goroutine dump 里的编号一致，便于对照定位阻塞点。
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseInt(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
