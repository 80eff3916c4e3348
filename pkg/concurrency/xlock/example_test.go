package xlock_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/omeyang/basekit/pkg/concurrency/xlock"
)

func ExampleNew() {
	m, err := xlock.New()
	if err != nil {
		panic(err)
	}
	if _, err := m.Register("config.state", 10); err != nil {
		panic(err)
	}
	if _, err := m.Register("cache.flush", 20); err != nil {
		panic(err)
	}

	// 入参顺序随意，获取按注册顺序号进行
	err = m.Do(context.Background(), []string{"cache.flush", "config.state"},
		func(ctx context.Context) error {
			fmt.Println("holding both locks in registration order")
			return nil
		})
	if err != nil {
		panic(err)
	}
	// Output:
	// holding both locks in registration order
}

func ExampleManager_Do() {
	m, err := xlock.New()
	if err != nil {
		panic(err)
	}
	if _, err := m.Register("config.state", 10); err != nil {
		panic(err)
	}

	// 嵌套临界区使用回调收到的 ctx，重入被自动识别
	err = m.Do(context.Background(), []string{"config.state"},
		func(ctx context.Context) error {
			return m.Do(ctx, []string{"config.state"}, func(context.Context) error {
				fmt.Println("re-entrant acquisition is skipped, not deadlocked")
				return nil
			})
		})
	if err != nil {
		panic(err)
	}
	// Output:
	// re-entrant acquisition is skipped, not deadlocked
}

func ExampleManager_Acquire() {
	m, err := xlock.New()
	if err != nil {
		panic(err)
	}
	if _, err := m.Register("alpha", 10); err != nil {
		panic(err)
	}
	if _, err := m.Register("bravo", 20); err != nil {
		panic(err)
	}

	sc, err := m.Acquire(context.Background(), []string{"bravo"})
	if err != nil {
		panic(err)
	}
	defer sc.Release()

	// 持有 bravo(20) 后获取 alpha(10) 破坏顺序约定
	_, err = m.Acquire(sc.Context(), []string{"alpha"})
	fmt.Println("order violation:", errors.Is(err, xlock.ErrOrderViolation))
	// Output:
	// order violation: true
}

func ExampleRegisterWellKnown() {
	m, err := xlock.New()
	if err != nil {
		panic(err)
	}
	if err := xlock.RegisterWellKnown(m); err != nil {
		panic(err)
	}

	st := m.Status()[xlock.LockConfigReload]
	fmt.Printf("%s has order %d\n", st.Name, st.Order)
	// Output:
	// config.reload has order 20
}

func ExampleDefault() {
	// 全局管理器自带预定义锁表，可直接按段内顺序获取
	err := xlock.Default().Do(context.Background(),
		[]string{xlock.LockAppLifecycle, xlock.LockConfigReload},
		func(ctx context.Context) error {
			fmt.Println("reloading configuration during startup")
			return nil
		})
	if err != nil {
		panic(err)
	}
	// Output:
	// reloading configuration during startup
}

func ExampleNewMutex() {
	mu := xlock.NewMutex()
	if err := mu.Lock(context.Background()); err != nil {
		panic(err)
	}
	fmt.Println("try while held:", mu.TryLock())

	if err := mu.Unlock(); err != nil {
		panic(err)
	}
	fmt.Println("try after unlock:", mu.TryLock())
	// Output:
	// try while held: false
	// try after unlock: true
}
