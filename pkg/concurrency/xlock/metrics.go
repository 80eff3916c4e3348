package xlock

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 设计决策: 指标前缀使用 "xlock.*"，与 OTel Meter scope name
// （Meter("xlock")）保持一致。如需统一命名空间，应在采集端处理。
const (
	// metricNameAcquireTotal 多锁获取次数计数器（按调用计）
	metricNameAcquireTotal = "xlock.acquire.total"
	// metricNameAcquireDuration 多锁获取耗时直方图
	metricNameAcquireDuration = "xlock.acquire.duration"
	// metricNameReleaseTotal 单锁释放次数计数器
	metricNameReleaseTotal = "xlock.release.total"
	// metricNameReentrantTotal 重入跳过次数计数器
	metricNameReentrantTotal = "xlock.reentrant.total"
	// metricNameViolationTotal 顺序违规次数计数器
	metricNameViolationTotal = "xlock.violation.total"
	// metricNameWarningTotal 长持有告警条数计数器
	metricNameWarningTotal = "xlock.warning.total"
)

// durationBuckets 获取耗时直方图的桶边界（秒）。
// 进程内锁正常在微秒级命中首桶，长尾对应真实争用。
var durationBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 10.0}

// 获取失败原因（xlock.fail_reason 标签取值）。
const (
	reasonTimeout    = "timeout"
	reasonWouldBlock = "would_block"
	reasonViolation  = "violation"
	reasonNotFound   = "not_found"
	reasonCanceled   = "canceled"
	reasonOther      = "other"
)

// failReason 将获取失败归类为低基数的指标标签值。
func failReason(err error) string {
	switch {
	case errors.Is(err, ErrAcquireTimeout):
		return reasonTimeout
	case errors.Is(err, ErrWouldBlock):
		return reasonWouldBlock
	case errors.Is(err, ErrOrderViolation):
		return reasonViolation
	case errors.Is(err, ErrNotFound):
		return reasonNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return reasonCanceled
	default:
		return reasonOther
	}
}

// metrics 锁指标收集器。nil 接收者安全（不收集）。
type metrics struct {
	meter           metric.Meter
	acquireTotal    metric.Int64Counter
	acquireDuration metric.Float64Histogram
	releaseTotal    metric.Int64Counter
	reentrantTotal  metric.Int64Counter
	violationTotal  metric.Int64Counter
	warningTotal    metric.Int64Counter
}

// newMetrics 创建指标收集器。
// meterProvider 为 nil 时返回 nil（不收集指标）。
func newMetrics(meterProvider metric.MeterProvider) (*metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	m := &metrics{}
	m.meter = meterProvider.Meter("xlock",
		metric.WithInstrumentationVersion(instrumentationVersion),
	)

	var err error
	if m.acquireTotal, err = m.meter.Int64Counter(metricNameAcquireTotal,
		metric.WithDescription("多锁获取次数"), metric.WithUnit("{acquire}")); err != nil {
		return nil, err
	}
	if m.acquireDuration, err = m.meter.Float64Histogram(metricNameAcquireDuration,
		metric.WithDescription("多锁获取耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	if m.releaseTotal, err = m.meter.Int64Counter(metricNameReleaseTotal,
		metric.WithDescription("单锁释放次数"), metric.WithUnit("{release}")); err != nil {
		return nil, err
	}
	if m.reentrantTotal, err = m.meter.Int64Counter(metricNameReentrantTotal,
		metric.WithDescription("重入跳过次数"), metric.WithUnit("{skip}")); err != nil {
		return nil, err
	}
	if m.violationTotal, err = m.meter.Int64Counter(metricNameViolationTotal,
		metric.WithDescription("锁顺序违规次数"), metric.WithUnit("{violation}")); err != nil {
		return nil, err
	}
	if m.warningTotal, err = m.meter.Int64Counter(metricNameWarningTotal,
		metric.WithDescription("长持有告警条数"), metric.WithUnit("{warning}")); err != nil {
		return nil, err
	}
	return m, nil
}

// recordAcquire 记录一次多锁获取的结果。
// 注册表中的锁是有限集合，但一次调用覆盖多把锁，
// 因此 acquire 维度只带数量与结果，不带锁名标签。
func (m *metrics) recordAcquire(ctx context.Context, count int, acquired bool, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	// 使用 context.WithoutCancel 确保即使 ctx 被取消，指标仍能记录。
	metricsCtx := context.WithoutCancel(ctx)

	attrs := []attribute.KeyValue{
		attribute.Int(attrCount, count),
		attribute.Bool(attrAcquired, acquired),
	}
	if !acquired {
		attrs = append(attrs, attribute.String(attrFailReason, reason))
	}

	m.acquireTotal.Add(metricsCtx, 1, metric.WithAttributes(attrs...))
	m.acquireDuration.Record(metricsCtx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// recordRelease 记录单把锁的成功释放。
func (m *metrics) recordRelease(ctx context.Context, name string) {
	if m == nil {
		return
	}
	m.releaseTotal.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String(attrLockName, name)))
}

// recordReentrant 记录一次重入跳过。
func (m *metrics) recordReentrant(ctx context.Context, name string) {
	if m == nil {
		return
	}
	m.reentrantTotal.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String(attrLockName, name)))
}

// recordViolation 记录一次顺序违规。
func (m *metrics) recordViolation(ctx context.Context, name string) {
	if m == nil {
		return
	}
	m.violationTotal.Add(context.WithoutCancel(ctx), 1,
		metric.WithAttributes(attribute.String(attrLockName, name)))
}

// recordWarnings 记录一次检测产生的长持有告警条数。
func (m *metrics) recordWarnings(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.warningTotal.Add(context.WithoutCancel(ctx), int64(n))
}
