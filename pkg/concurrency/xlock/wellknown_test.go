package xlock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWellKnownBandConstants(t *testing.T) {
	// 顺序号分段一经发布不得变更
	assert.Equal(t, 0, BandOrchestration)
	assert.Equal(t, 100, BandSubsystems)
	assert.Equal(t, 200, BandInfrastructure)

	assert.Equal(t, "app.lifecycle", LockAppLifecycle)
	assert.Equal(t, "config.reload", LockConfigReload)
	assert.Equal(t, "watcher.state", LockWatcherState)
	assert.Equal(t, "detector.state", LockDetectorState)
	assert.Equal(t, "telemetry.flush", LockTelemetryFlush)
	assert.Equal(t, "registry.maintenance", LockRegistryMaintenance)
}

func TestRegisterWellKnown(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, RegisterWellKnown(m))

	want := map[string]int{
		LockAppLifecycle:        BandOrchestration + 10,
		LockConfigReload:        BandOrchestration + 20,
		LockWatcherState:        BandSubsystems + 10,
		LockDetectorState:       BandSubsystems + 20,
		LockTelemetryFlush:      BandInfrastructure + 10,
		LockRegistryMaintenance: BandInfrastructure + 20,
	}

	st := m.Status()
	require.Len(t, st, len(want))
	for name, order := range want {
		require.Contains(t, st, name)
		assert.Equal(t, order, st[name].Order, "order for %s", name)
		assert.NotEmpty(t, st[name].Description, "description for %s", name)
	}
}

func TestRegisterWellKnownIdempotent(t *testing.T) {
	m := newTestManager(t)

	require.NoError(t, RegisterWellKnown(m))
	require.NoError(t, RegisterWellKnown(m))
	assert.Len(t, m.Status(), len(wellKnownLocks))
}

func TestRegisterWellKnownKeepsUserLocks(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("app.custom", 55)
	require.NoError(t, err)

	require.NoError(t, RegisterWellKnown(m))
	assert.Len(t, m.Status(), len(wellKnownLocks)+1)
}

func TestRegisterWellKnownNameCollision(t *testing.T) {
	m := newTestManager(t)

	// 应用抢注了预定义名字但顺序号不符
	_, err := m.Register(LockConfigReload, 999)
	require.NoError(t, err)

	err = RegisterWellKnown(m)
	assert.ErrorIs(t, err, ErrOrderConflict)
	assert.ErrorContains(t, err, "expects order 20")
}

func TestRegisterWellKnownOrderCollision(t *testing.T) {
	m := newTestManager(t)

	// 应用占用了预定义顺序号
	_, err := m.Register("app.custom", BandOrchestration+10)
	require.NoError(t, err)

	err = RegisterWellKnown(m)
	assert.ErrorIs(t, err, ErrOrderConflict)
}

func TestRegisterWellKnownConcurrent(t *testing.T) {
	m := newTestManager(t)

	const n = 10
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- RegisterWellKnown(m)
		}()
	}
	wg.Wait()
	close(errs)

	// 输掉注册竞争的一方以跳过收场，不报错
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, m.Status(), len(wellKnownLocks))
}

func TestWellKnownBandLayering(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, RegisterWellKnown(m))

	// 跨段按序获取：编排层 → 子系统层 → 基础设施层
	err := m.Do(context.Background(),
		[]string{LockAppLifecycle, LockWatcherState, LockTelemetryFlush},
		func(ctx context.Context) error {
			// 持有任意上层锁时重入同一把锁总是合法
			return m.Do(ctx, []string{LockTelemetryFlush}, func(ctx context.Context) error {
				// 反向获取更低顺序号的新锁则是违规
				innerErr := m.Do(ctx, []string{LockConfigReload}, func(context.Context) error {
					t.Error("lower-band acquisition must not succeed from the infrastructure band")
					return nil
				})
				assert.ErrorIs(t, innerErr, ErrOrderViolation)
				return nil
			})
		})
	require.NoError(t, err)
}
