package xlock

import "time"

const (
	// DefaultAcquireTimeout 阻塞获取的默认超时预算。
	// 多锁获取共享同一个预算，而非每把锁单独计时。
	DefaultAcquireTimeout = 10 * time.Second

	// DefaultHoldWarnThreshold 长持有告警的默认阈值。
	// DetectPotentialDeadlocks 报告持有时间超过此阈值的锁。
	DefaultHoldWarnThreshold = 30 * time.Second

	// DefaultMonitorInterval Monitor 的默认扫描间隔。
	DefaultMonitorInterval = 30 * time.Second
)

const (
	// instrumentationVersion 仪表化版本号（Metrics + Trace 共享）
	instrumentationVersion = "1.0.0"
)
