package xlru_test

import (
	"fmt"
	"time"

	"github.com/omeyang/basekit/pkg/util/xlru"
)

func Example() {
	// 最多 1000 条、写入后 5 分钟过期的缓存
	cache, err := xlru.New[string, int](1000,
		xlru.WithTTL[string, int](5*time.Minute))
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	cache.Set("user:123", 42)

	if val, ok := cache.Get("user:123"); ok {
		fmt.Println("Found:", val)
	}
	if cache.Contains("user:123") {
		fmt.Println("Key exists")
	}

	cache.Delete("user:123")
	fmt.Println("Length:", cache.Len())

	// Output:
	// Found: 42
	// Key exists
	// Length: 0
}

func Example_withEvictionCallback() {
	cache, err := xlru.New(2,
		xlru.WithOnEvicted(func(key string, value int) {
			fmt.Printf("Evicted: %s=%d\n", key, value)
		}))
	if err != nil {
		panic(err)
	}
	// 注意：此示例不调用 defer cache.Close()，
	// 因为 Close 会 Purge 剩余条目并触发回调，干扰 Output 断言。
	// 实际使用中务必调用 Close() 释放资源，参见 Example()。

	cache.Set("key1", 100)
	cache.Set("key2", 200)

	// 容量已满，写入新键淘汰最久未使用的 key1
	cache.Set("key3", 300)

	fmt.Println("Length:", cache.Len())

	// Output:
	// Evicted: key1=100
	// Length: 2
}

func Example_pointerValues() {
	type UserData struct {
		Name string
		Age  int
	}

	cache, err := xlru.New[string, *UserData](100)
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	cache.Set("user:1", &UserData{Name: "Alice", Age: 30})

	if user, ok := cache.Get("user:1"); ok {
		fmt.Printf("User: %s, Age: %d\n", user.Name, user.Age)
	}

	// Output:
	// User: Alice, Age: 30
}

func Example_peek() {
	cache, err := xlru.New[string, int](10)
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	cache.Set("key1", 100)

	// Peek 读取值但不提升 LRU 新近度
	if val, ok := cache.Peek("key1"); ok {
		fmt.Println("Peeked:", val)
	}

	// Output:
	// Peeked: 100
}

func Example_keys() {
	cache, err := xlru.New[string, int](10)
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	cache.Set("a", 1)
	cache.Set("b", 2)
	cache.Set("c", 3)

	fmt.Println("Number of keys:", len(cache.Keys()))

	// Output:
	// Number of keys: 3
}
