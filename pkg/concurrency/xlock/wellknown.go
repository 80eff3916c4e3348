package xlock

import (
	"errors"
	"fmt"
)

// 顺序号分段约定。每段预留 100 个顺序号，段内按 10 递增留出
// 插入空间。应用自有的锁应避开已占用的具体顺序号。
const (
	// BandOrchestration 高层编排段（0–99）：应用生命周期、配置。
	// 这些锁在最外层获取，顺序号最小。
	BandOrchestration = 0

	// BandSubsystems 早启动子系统段（100–199）：监视器、探测器等
	// 在编排层之内、基础设施层之外持锁的组件。
	BandSubsystems = 100

	// BandInfrastructure 核心基础设施段（200–299）：遥测、注册表
	// 维护等最内层组件。持有任意上层锁时获取本段锁总是合法的。
	BandInfrastructure = 200
)

// 预定义的锁名。顺序号见 wellKnownLocks。
const (
	// LockAppLifecycle 应用生命周期状态（启动/停止阶段切换）。
	LockAppLifecycle = "app.lifecycle"

	// LockConfigReload 配置加载与热重载。
	LockConfigReload = "config.reload"

	// LockWatcherState 文件监视器的启停与路径集变更。
	LockWatcherState = "watcher.state"

	// LockDetectorState 文件操作探测器的窗口与历史状态。
	LockDetectorState = "detector.state"

	// LockTelemetryFlush 遥测数据刷新。
	LockTelemetryFlush = "telemetry.flush"

	// LockRegistryMaintenance 注册表维护（清理、压缩类任务）。
	LockRegistryMaintenance = "registry.maintenance"
)

// wellKnownLocks 是预定义锁表。顺序号一经发布不得变更，
// 只能在段内空隙中追加新锁。
var wellKnownLocks = []struct {
	name        string
	order       int
	description string
}{
	{LockAppLifecycle, BandOrchestration + 10, "application lifecycle state"},
	{LockConfigReload, BandOrchestration + 20, "configuration load and reload"},
	{LockWatcherState, BandSubsystems + 10, "filesystem watcher state"},
	{LockDetectorState, BandSubsystems + 20, "file operation detector state"},
	{LockTelemetryFlush, BandInfrastructure + 10, "telemetry flush"},
	{LockRegistryMaintenance, BandInfrastructure + 20, "registry maintenance"},
}

// RegisterWellKnown 把预定义锁表注册到 m。
//
// 幂等且并发安全：已按相同顺序号注册过的名字直接跳过，并发调用
// 时输掉注册竞争的一方同样以跳过收场。只有当名字被占用且顺序号
// 不一致（调用方自有的锁撞名）时返回错误。
//
// Default 返回的全局管理器在首次创建时自动调用本函数；
// 自建的 Manager 需要显式调用。
func RegisterWellKnown(m Manager) error {
	for _, wk := range wellKnownLocks {
		_, err := m.Register(wk.name, wk.order, WithDescription(wk.description))
		if err == nil {
			continue
		}
		if errors.Is(err, ErrDuplicateName) {
			// 已存在：顺序号一致视为重复注册（无操作），否则报冲突。
			if st, ok := m.Status()[wk.name]; ok && st.Order == wk.order {
				continue
			}
			return fmt.Errorf("%w: well-known lock %q expects order %d",
				ErrOrderConflict, wk.name, wk.order)
		}
		return err
	}
	return nil
}
