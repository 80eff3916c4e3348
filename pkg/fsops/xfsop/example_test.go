package xfsop_test

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/omeyang/basekit/pkg/fsops/xfsop"
)

// ExampleClassify 演示对一个事件窗口做离线归类。
func ExampleClassify() {
	// vim/写库风格的原子保存：写临时文件后 rename 覆盖目标。
	events := []fsnotify.Event{
		{Name: "/data/doc.txt.tmp", Op: fsnotify.Create},
		{Name: "/data/doc.txt.tmp", Op: fsnotify.Write},
		{Name: "/data/doc.txt.tmp", Op: fsnotify.Rename},
		{Name: "/data/doc.txt", Op: fsnotify.Create},
	}

	op, ok := xfsop.Classify(events)
	fmt.Println(ok, op.Kind, op.Path, op.TempPath)
	// Output: true atomic_save /data/doc.txt /data/doc.txt.tmp
}

// ExampleNewWatcher 演示监视目录并消费高层操作。
func ExampleNewWatcher() {
	dir, err := os.MkdirTemp("", "xfsop-example")
	if err != nil {
		fmt.Println("临时目录失败:", err)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	target := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(target, []byte("a: 1\n"), 0o600); err != nil {
		fmt.Println("写入失败:", err)
		return
	}

	w, err := xfsop.NewWatcher([]string{dir},
		xfsop.WithTracker(xfsop.WithWindow(50*time.Millisecond)),
	)
	if err != nil {
		fmt.Println("创建失败:", err)
		return
	}
	defer func() { _ = w.Close() }()

	if err := os.WriteFile(target, []byte("a: 2\n"), 0o600); err != nil {
		fmt.Println("写入失败:", err)
		return
	}

	select {
	case op := <-w.Operations():
		fmt.Println(op.Kind)
	case <-time.After(3 * time.Second):
		fmt.Println("timeout")
	}
	// Output: in_place_write
}
