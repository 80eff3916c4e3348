package xid

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/sonyflake/v2"
)

// =============================================================================
// 常量
// =============================================================================

const (
	// DefaultMaxClockDrift 时钟回拨时的默认最大等待时长。
	// sonyflake 的时间精度为 10ms，NTP 校正通常在几百毫秒内完成。
	DefaultMaxClockDrift = 500 * time.Millisecond

	// DefaultRetryInterval 时钟回拨等待期间的默认重试间隔。
	DefaultRetryInterval = 10 * time.Millisecond
)

// Sonyflake v2 默认位布局（39 位时间 + 8 位序列 + 16 位机器 = 63 位）。
// 仅机器位掩码在包内使用（测试校验机器分量）；若升级大版本后布局变化需同步调整。
const (
	machineBits = 16
	machineMask = (1 << machineBits) - 1
)

// =============================================================================
// Generator
// =============================================================================

// Generator 进程内唯一 ID 生成器，生成的 int64 按时间粗略有序。
//
// 两种用法：
//   - 实例化：NewGenerator 创建独立实例，适合依赖注入与测试隔离
//   - 包级函数：New/NewString 等使用全局默认实例（首次使用时自动初始化）
//
// 所有方法并发安全。
type Generator struct {
	sf            *sonyflake.Sonyflake
	maxClockDrift time.Duration
	retryInterval time.Duration
	// nextID 默认为 sf.NextID，测试中可替换以覆盖错误分支。
	nextID func() (int64, error)
}

// NewGenerator 创建独立的 ID 生成器。
//
// 未指定 WithMachineID 时使用 [DefaultMachineID] 的回退链。
// 配置非法（负等待时长、起始时间超前、机器 ID 校验失败）返回 [ErrInvalidConfig]。
//
// 设计决策: 返回 *Generator 而非接口。需要解耦的调用方（如 xfsop 的
// WithIDFunc）以函数类型注入，无需在此处抽象。
func NewGenerator(opts ...Option) (*Generator, error) {
	cfg := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	if cfg.maxClockDrift < 0 {
		return nil, fmt.Errorf("%w: max clock drift must be non-negative, got %s", ErrInvalidConfig, cfg.maxClockDrift)
	}
	if cfg.retryInterval < 0 {
		return nil, fmt.Errorf("%w: retry interval must be non-negative, got %s", ErrInvalidConfig, cfg.retryInterval)
	}

	machineIDFn := cfg.machineID
	if machineIDFn == nil {
		machineIDFn = DefaultMachineID
	}
	settings := sonyflake.Settings{
		StartTime: cfg.startTime, // 零值时由 sonyflake 使用其默认纪元
		MachineID: func() (int, error) {
			id, err := machineIDFn()
			return int(id), err
		},
	}
	if cfg.checkMachineID != nil {
		settings.CheckMachineID = func(id int) bool {
			return cfg.checkMachineID(uint16(id))
		}
	}

	sf, err := sonyflake.New(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	g := &Generator{
		sf:            sf,
		maxClockDrift: DefaultMaxClockDrift,
		retryInterval: DefaultRetryInterval,
	}
	g.nextID = sf.NextID
	if cfg.maxClockDriftSet {
		g.maxClockDrift = cfg.maxClockDrift
	}
	if cfg.retryIntervalSet {
		g.retryInterval = cfg.retryInterval
	}
	return g, nil
}

// validate 防止零值或 nil 生成器导致 panic。
func (g *Generator) validate() error {
	if g == nil || g.nextID == nil {
		return ErrNilGenerator
	}
	return nil
}

// New 生成新的唯一 ID。
//
// 时间分量溢出返回 [ErrOverTimeLimit]（不可恢复）；时钟回拨期间直接返回
// 底层错误，需要容忍回拨的调用方使用 [Generator.NewWithRetry]。
func (g *Generator) New() (int64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	id, err := g.nextID()
	if err != nil {
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
		return 0, err
	}
	return id, nil
}

// NewWithRetry 生成新的唯一 ID，时钟回拨时等待重试。
//
// 等待窗口为 maxClockDrift（默认 500ms，WithMaxClockDrift 调整），
// 每 retryInterval 重试一次，可通过 ctx 取消。窗口耗尽返回
// [ErrClockBackwardTimeout]；[ErrOverTimeLimit] 不可恢复，立即返回。
func (g *Generator) NewWithRetry(ctx context.Context) (int64, error) {
	if err := g.validate(); err != nil {
		return 0, err
	}
	if ctx == nil {
		return 0, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// 快速路径：首次尝试成功则不分配 timer。
	id, err := g.nextID()
	if err == nil {
		return id, nil
	}
	return g.retryNextID(ctx, err)
}

func (g *Generator) retryNextID(ctx context.Context, firstErr error) (int64, error) {
	if errors.Is(firstErr, sonyflake.ErrOverTimeLimit) {
		return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, firstErr)
	}

	deadline := time.Now().Add(g.maxClockDrift)
	lastErr := firstErr
	timer := time.NewTimer(0)
	<-timer.C
	defer timer.Stop()

	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return 0, fmt.Errorf("%w: %w", ErrClockBackwardTimeout, lastErr)
		}

		timer.Reset(min(g.retryInterval, remaining))
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
		}

		id, err := g.nextID()
		if err == nil {
			return id, nil
		}
		lastErr = err
		// sonyflake v2 的 NextID 只返回 ErrOverTimeLimit（回拨在其内部表现为
		// 短暂等待后的一般错误），其余错误按可重试处理。
		if errors.Is(err, sonyflake.ErrOverTimeLimit) {
			return 0, fmt.Errorf("%w: %w", ErrOverTimeLimit, err)
		}
	}
}

// NewString 生成新的唯一 ID，base36 编码，12-13 个字符。
func (g *Generator) NewString() (string, error) {
	id, err := g.New()
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// NewStringWithRetry 生成新的唯一 ID（字符串格式），时钟回拨时等待重试。
// 详见 [Generator.NewWithRetry]。
func (g *Generator) NewStringWithRetry(ctx context.Context) (string, error) {
	id, err := g.NewWithRetry(ctx)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 36), nil
}

// MustNewString 生成新的唯一 ID（字符串格式），失败时 panic。
//
// 内部带时钟回拨重试（context.Background()）。适合启动期预生成等
// 明确接受 crash-fast 的场景；常规路径请使用 NewString 并处理错误。
func (g *Generator) MustNewString() string {
	s, err := g.NewStringWithRetry(context.Background())
	if err != nil {
		panic(err)
	}
	return s
}

// =============================================================================
// 全局默认生成器
// =============================================================================

var (
	defaultGen atomic.Pointer[Generator]
	initMu     sync.Mutex
	// initCalled 标记用户显式调用过 Init。一旦为 true，自动初始化关闭，
	// Init 失败后由用户修复配置并重试。受 initMu 保护。
	initCalled bool
)

// Init 以给定配置初始化全局生成器。
//
// 不调用 Init 时，首个包级生成函数会用默认配置自动初始化。
// Init 只能成功一次，此后（包括自动初始化之后）返回 [ErrAlreadyInitialized]。
// Init 失败可修复配置后重试；建议在应用启动时调用以尽早暴露配置问题。
func Init(opts ...Option) error {
	initMu.Lock()
	defer initMu.Unlock()
	if defaultGen.Load() != nil {
		return ErrAlreadyInitialized
	}
	initCalled = true
	gen, err := NewGenerator(opts...)
	if err != nil {
		return err
	}
	defaultGen.Store(gen)
	return nil
}

// ensureInitialized double-checked locking：快速路径只做一次原子 Load。
// 用户显式 Init 失败后不再自动初始化，返回 ErrNotInitialized。
func ensureInitialized() (*Generator, error) {
	if gen := defaultGen.Load(); gen != nil {
		return gen, nil
	}
	initMu.Lock()
	defer initMu.Unlock()
	if gen := defaultGen.Load(); gen != nil {
		return gen, nil
	}
	if initCalled {
		return nil, ErrNotInitialized
	}
	gen, err := NewGenerator()
	if err != nil {
		return nil, err
	}
	defaultGen.Store(gen)
	return gen, nil
}

// New 用全局生成器生成新的唯一 ID。未初始化时以默认配置自动初始化。
func New() (int64, error) {
	gen, err := ensureInitialized()
	if err != nil {
		return 0, err
	}
	return gen.New()
}

// NewWithRetry 用全局生成器生成新的唯一 ID，时钟回拨时等待重试。
// 详见 [Generator.NewWithRetry]。
func NewWithRetry(ctx context.Context) (int64, error) {
	gen, err := ensureInitialized()
	if err != nil {
		return 0, err
	}
	return gen.NewWithRetry(ctx)
}

// NewString 用全局生成器生成新的唯一 ID（base36 字符串）。
func NewString() (string, error) {
	gen, err := ensureInitialized()
	if err != nil {
		return "", err
	}
	return gen.NewString()
}

// NewStringWithRetry 用全局生成器生成新的唯一 ID（字符串格式），
// 时钟回拨时等待重试。详见 [Generator.NewWithRetry]。
func NewStringWithRetry(ctx context.Context) (string, error) {
	gen, err := ensureInitialized()
	if err != nil {
		return "", err
	}
	return gen.NewStringWithRetry(ctx)
}

// MustNewString 用全局生成器生成新的唯一 ID（字符串格式），失败时 panic。
// 详见 [Generator.MustNewString]。
func MustNewString() string {
	gen, err := ensureInitialized()
	if err != nil {
		panic(err)
	}
	return gen.MustNewString()
}

// =============================================================================
// 解析
// =============================================================================

// Parse 解析 NewString 生成的 base36 字符串，还原 int64 ID。
//
// 纯函数，无需初始化。解析沿用 strconv.ParseInt 的宽松规则
// （大小写不敏感、允许前导 "+"）；语法错误、溢出、非正值统一返回 [ErrInvalidID]。
// int64 正数范围恰好覆盖 sonyflake 的 63 位有效位，无需额外位范围检查。
func Parse(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidID, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %d", ErrInvalidID, id)
	}
	return id, nil
}
