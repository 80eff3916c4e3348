package xlock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestManager 创建测试用 Manager，配置错误直接判失败。
func newTestManager(t *testing.T, opts ...Option) Manager {
	t.Helper()
	m, err := New(opts...)
	require.NoError(t, err)
	return m
}

func TestNewDefaults(t *testing.T) {
	m := newTestManager(t)

	impl, ok := m.(*manager)
	require.True(t, ok)
	assert.Equal(t, DefaultAcquireTimeout, impl.opts.defaultTimeout)
	assert.Equal(t, DefaultHoldWarnThreshold, impl.opts.holdWarnThreshold)
	assert.Nil(t, impl.metrics, "metrics should be off without a meter provider")
}

func TestNewNilOption(t *testing.T) {
	m, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, m)
}

func TestNewInvalidTimeout(t *testing.T) {
	_, err := New(WithDefaultTimeout(0))
	assert.ErrorIs(t, err, ErrInvalidTimeout)

	_, err = New(WithDefaultTimeout(-time.Second))
	assert.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestNewInvalidThreshold(t *testing.T) {
	_, err := New(WithHoldWarnThreshold(0))
	assert.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = New(WithHoldWarnThreshold(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestRegisterAndGet(t *testing.T) {
	m := newTestManager(t)

	mu, err := m.Register("cache.flush", 10)
	require.NoError(t, err)
	require.NotNil(t, mu)

	got, err := m.Get("cache.flush")
	require.NoError(t, err)
	assert.Same(t, mu, got)
}

func TestRegisterEmptyName(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("", 10)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRegisterDuplicateName(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("alpha", 10)
	require.NoError(t, err)

	_, err = m.Register("alpha", 20)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.ErrorContains(t, err, `"alpha"`)

	// 失败的注册不改变注册表：顺序号 20 仍然可用
	_, err = m.Register("bravo", 20)
	assert.NoError(t, err)
}

func TestRegisterOrderConflict(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("alpha", 10)
	require.NoError(t, err)

	_, err = m.Register("bravo", 10)
	assert.ErrorIs(t, err, ErrOrderConflict)
	assert.ErrorContains(t, err, `held by "alpha"`)

	// 失败的注册不改变注册表：名字 bravo 仍然可用
	_, err = m.Register("bravo", 20)
	assert.NoError(t, err)
}

func TestRegisterNegativeOrder(t *testing.T) {
	m := newTestManager(t)

	// 顺序号只要求唯一，负数同样合法
	_, err := m.Register("early", -100)
	require.NoError(t, err)

	sc, err := m.Acquire(context.Background(), []string{"early"})
	require.NoError(t, err)
	sc.Release()
}

func TestRegisterWithDescription(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("config.reload", 20, WithDescription("configuration load and reload"))
	require.NoError(t, err)

	st := m.Status()["config.reload"]
	assert.Equal(t, "configuration load and reload", st.Description)
}

func TestRegisterWithMutex(t *testing.T) {
	m := newTestManager(t)

	pre := NewMutex()
	_, err := m.Register("preallocated", 10, WithMutex(pre))
	require.NoError(t, err)

	got, err := m.Get("preallocated")
	require.NoError(t, err)
	assert.Same(t, pre, got)

	// nil Mutex 被忽略，注册新建的锁
	fresh, err := m.Register("fresh", 20, WithMutex(nil))
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.NotSame(t, pre, fresh)
}

func TestRegisterNilOption(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("alpha", 10, nil)
	assert.NoError(t, err)
}

func TestGetNotFound(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, `"ghost"`)
}

func TestStatusEmpty(t *testing.T) {
	m := newTestManager(t)
	assert.Empty(t, m.Status())
}

func TestStatusSnapshot(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Register("alpha", 10, WithDescription("first lock"))
	require.NoError(t, err)
	_, err = m.Register("bravo", 20)
	require.NoError(t, err)

	sc, err := m.Acquire(context.Background(), []string{"alpha"}, WithHolder("worker-1"))
	require.NoError(t, err)

	st := m.Status()
	require.Len(t, st, 2)

	held := st["alpha"]
	assert.Equal(t, "alpha", held.Name)
	assert.Equal(t, 10, held.Order)
	assert.Equal(t, "first lock", held.Description)
	assert.True(t, held.Held)
	assert.Positive(t, held.Owner)
	assert.Equal(t, "worker-1", held.Holder)
	assert.WithinDuration(t, time.Now(), held.AcquiredAt, 5*time.Second)

	idle := st["bravo"]
	assert.False(t, idle.Held)
	assert.Zero(t, idle.Owner)
	assert.Empty(t, idle.Holder)
	assert.True(t, idle.AcquiredAt.IsZero())

	// 释放后诊断字段清空
	sc.Release()
	cleared := m.Status()["alpha"]
	assert.False(t, cleared.Held)
	assert.Zero(t, cleared.Owner)
	assert.Empty(t, cleared.Holder)
	assert.True(t, cleared.AcquiredAt.IsZero())
}

func TestStatusRawHeldMutex(t *testing.T) {
	m := newTestManager(t)

	mu, err := m.Register("raw", 10)
	require.NoError(t, err)

	// 绕过 Manager 直接持有底层原语：快照只有原语状态，无持有者信息
	require.True(t, mu.TryLock())
	st := m.Status()["raw"]
	assert.True(t, st.Held)
	assert.Zero(t, st.Owner)
	assert.True(t, st.AcquiredAt.IsZero())

	require.NoError(t, mu.Unlock())
}

func TestDetectPotentialDeadlocks(t *testing.T) {
	m := newTestManager(t, WithHoldWarnThreshold(20*time.Millisecond))

	_, err := m.Register("zebra", 10)
	require.NoError(t, err)
	_, err = m.Register("alpha", 20)
	require.NoError(t, err)

	sc, err := m.Acquire(context.Background(), []string{"zebra", "alpha"}, WithHolder("slow-job"))
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	warns := m.DetectPotentialDeadlocks()
	require.Len(t, warns, 2)

	// 告警按锁名排序
	assert.Equal(t, "alpha", warns[0].Name)
	assert.Equal(t, "zebra", warns[1].Name)
	for _, w := range warns {
		assert.Positive(t, w.Owner)
		assert.Equal(t, "slow-job", w.Holder)
		assert.GreaterOrEqual(t, w.HeldFor, 20*time.Millisecond)
		assert.False(t, w.AcquiredAt.IsZero())
	}

	sc.Release()
	assert.Empty(t, m.DetectPotentialDeadlocks())
}

func TestDetectBelowThreshold(t *testing.T) {
	m := newTestManager(t) // 默认阈值 30s，短持有不会触发

	_, err := m.Register("alpha", 10)
	require.NoError(t, err)

	sc, err := m.Acquire(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	defer sc.Release()

	assert.Empty(t, m.DetectPotentialDeadlocks())
}

func TestWarningString(t *testing.T) {
	w := Warning{
		Name:    "config.reload",
		Order:   20,
		Owner:   7,
		Holder:  "reloader",
		HeldFor: 45 * time.Second,
	}
	assert.Equal(t,
		`xlock: potential deadlock: "config.reload" (order 20) held for 45s by goroutine 7 (reloader)`,
		w.String())
}

func TestWarningStringNoHolder(t *testing.T) {
	w := Warning{
		Name:    "watcher.state",
		Order:   110,
		Owner:   42,
		HeldFor: 90 * time.Second,
	}
	assert.Equal(t,
		`xlock: potential deadlock: "watcher.state" (order 110) held for 1m30s by goroutine 42`,
		w.String())
}

func TestGoid(t *testing.T) {
	id := goid()
	assert.Positive(t, id)

	otherID := make(chan int64, 1)
	go func() { otherID <- goid() }()
	got := <-otherID
	assert.Positive(t, got)
	assert.NotEqual(t, id, got)
}
