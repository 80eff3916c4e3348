package xfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// =============================================================================
// EnsureDir 单元测试
// =============================================================================

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
	}{
		{name: "创建单层目录", filename: filepath.Join(tmpDir, "newdir", "app.log")},
		{name: "创建多层目录", filename: filepath.Join(tmpDir, "a", "b", "c", "d", "app.log")},
		{name: "目录已存在", filename: filepath.Join(tmpDir, "app.log")},
		{name: "当前目录文件", filename: "app.log"},
		{name: "相对路径单点", filename: "./app.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := EnsureDir(tt.filename); err != nil {
				t.Fatalf("EnsureDir() 意外错误: %v", err)
			}

			dir := filepath.Dir(tt.filename)
			if dir == "" || dir == "." {
				return
			}
			info, err := os.Stat(dir)
			if err != nil {
				t.Fatalf("目录 %q 未被创建: %v", dir, err)
			}
			if !info.IsDir() {
				t.Errorf("%q 不是目录", dir)
			}
		})
	}
}

func TestEnsureDirPermission(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "permtest", "app.log")

	if err := EnsureDir(filename); err != nil {
		t.Fatalf("EnsureDir() 错误: %v", err)
	}

	info, err := os.Stat(filepath.Dir(filename))
	if err != nil {
		t.Fatalf("无法获取目录信息: %v", err)
	}

	// 实际权限受 umask 影响，只验证所有者位
	if perm := info.Mode().Perm(); perm&0700 != 0700 {
		t.Errorf("目录权限 %o 不符合预期，所有者应有 rwx", perm)
	}
}

// =============================================================================
// EnsureDirWithPerm 单元测试
// =============================================================================

func TestEnsureDirWithPerm(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name     string
		filename string
		perm     os.FileMode
		wantErr  error
	}{
		{name: "权限 0755", filename: filepath.Join(tmpDir, "perm755", "app.log"), perm: 0755},
		{name: "权限 0700", filename: filepath.Join(tmpDir, "perm700", "app.log"), perm: 0700},
		{name: "多层目录", filename: filepath.Join(tmpDir, "multi", "level", "app.log"), perm: 0750},
		{name: "空文件名", filename: "", perm: 0750, wantErr: ErrEmptyPath},
		{name: "空字节", filename: "a\x00b/app.log", perm: 0750, wantErr: ErrNullByte},
		{name: "缺少所有者执行位 0644", filename: filepath.Join(tmpDir, "bad", "app.log"), perm: 0644, wantErr: ErrInvalidPerm},
		{name: "缺少所有者执行位 0000", filename: filepath.Join(tmpDir, "bad", "app.log"), perm: 0, wantErr: ErrInvalidPerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EnsureDirWithPerm(tt.filename, tt.perm)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("EnsureDirWithPerm() 错误 = %v, 期望 %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("EnsureDirWithPerm() 意外错误: %v", err)
			}
			info, err := os.Stat(filepath.Dir(tt.filename))
			if err != nil {
				t.Fatalf("目录未被创建: %v", err)
			}
			if !info.IsDir() {
				t.Errorf("%q 不是目录", filepath.Dir(tt.filename))
			}
		})
	}
}

func TestEnsureDirWithPermIdempotent(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")

	if err := EnsureDirWithPerm(filename, 0755); err != nil {
		t.Fatalf("第一次调用错误: %v", err)
	}
	if err := EnsureDirWithPerm(filename, 0755); err != nil {
		t.Fatalf("第二次调用错误: %v", err)
	}
}

func TestDefaultDirPerm(t *testing.T) {
	if DefaultDirPerm != 0750 {
		t.Errorf("DefaultDirPerm = %o, 期望 0750", DefaultDirPerm)
	}
}
