package xfsop

import (
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkEv(op fsnotify.Op, name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: op}
}

func TestClassify_AtomicSave(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/config.yaml.tmp"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml.tmp"),
		mkEv(fsnotify.Rename, "/etc/app/config.yaml.tmp"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindAtomicSave, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml", op.Path)
	assert.Equal(t, "/etc/app/config.yaml.tmp", op.TempPath)
	assert.Empty(t, op.BackupPath)
	assert.InDelta(t, 0.9, op.Confidence, 1e-9)
	assert.Empty(t, op.ID, "Classify 不分配 ID")
	assert.False(t, op.DetectedAt.IsZero())
	assert.Len(t, op.Events, 4)
}

func TestClassify_AtomicSave_OpaqueTemp(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/.goutputstream-X3K2QZ"),
		mkEv(fsnotify.Write, "/etc/app/.goutputstream-X3K2QZ"),
		mkEv(fsnotify.Rename, "/etc/app/.goutputstream-X3K2QZ"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindAtomicSave, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml", op.Path)
	assert.Equal(t, "/etc/app/.goutputstream-X3K2QZ", op.TempPath)
	assert.InDelta(t, 0.75, op.Confidence, 1e-9,
		"不可推导的临时名置信度降档")
}

func TestClassify_AtomicSave_DraftNameFallback(t *testing.T) {
	// ".new" 不在内置临时表里，但 写 → rename → 目标出现 的形态成立
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/config.yaml.new"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml.new"),
		mkEv(fsnotify.Rename, "/etc/app/config.yaml.new"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindAtomicSave, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml.new", op.TempPath)
	assert.InDelta(t, 0.65, op.Confidence, 1e-9)
}

func TestClassify_AtomicSave_CustomTempPattern(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/config.yaml.staging"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml.staging"),
		mkEv(fsnotify.Rename, "/etc/app/config.yaml.staging"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events,
		WithTempPatterns(TempPattern{Suffix: ".staging"}))

	require.True(t, ok)
	assert.Equal(t, KindAtomicSave, op.Kind)
	assert.InDelta(t, 0.9, op.Confidence, 1e-9,
		"扩展表里的形态可推导目标，拿满置信度")
}

func TestClassify_SafeWriteReplace(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Rename, "/etc/app/config.yaml"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml~"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindSafeWriteReplace, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml", op.Path)
	assert.Equal(t, "/etc/app/config.yaml~", op.BackupPath)
	assert.InDelta(t, 0.85, op.Confidence, 1e-9)
}

func TestClassify_SafeWriteReplace_BackupOutsideWindow(t *testing.T) {
	// 挪开动作的落点没被捕捉到（备份在其他目录或窗口外）
	events := []fsnotify.Event{
		mkEv(fsnotify.Rename, "/etc/app/config.yaml"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindSafeWriteReplace, op.Kind)
	assert.Empty(t, op.BackupPath)
	assert.InDelta(t, 0.7, op.Confidence, 1e-9)
}

func TestClassify_BackupThenSave(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/config.yaml~"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml~"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindBackupThenSave, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml", op.Path)
	assert.Equal(t, "/etc/app/config.yaml~", op.BackupPath)
	assert.InDelta(t, 0.8, op.Confidence, 1e-9)
}

func TestClassify_BackupThenSave_BakSuffix(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/config.yaml.bak"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml.bak"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindBackupThenSave, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml.bak", op.BackupPath)
}

func TestClassify_DeleteRecreate(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Remove, "/etc/app/config.yaml"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindDeleteRecreate, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml", op.Path)
	assert.InDelta(t, 0.85, op.Confidence, 1e-9)
}

func TestClassify_InPlaceWrite(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Write, "/var/log/app.log"),
		mkEv(fsnotify.Write, "/var/log/app.log"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindInPlaceWrite, op.Kind)
	assert.Equal(t, "/var/log/app.log", op.Path)
	assert.InDelta(t, 0.95, op.Confidence, 1e-9)
}

func TestClassify_InPlaceWrite_ChmodIsNotStructural(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Chmod, "/var/log/app.log"),
		mkEv(fsnotify.Write, "/var/log/app.log"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindInPlaceWrite, op.Kind)
}

func TestClassify_InPlaceWrite_SwapNoiseIgnored(t *testing.T) {
	// vim 交换文件只是编辑痕迹，没有 rename 参与时不影响归类
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/.config.yaml.swp"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
		mkEv(fsnotify.Remove, "/etc/app/.config.yaml.swp"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindInPlaceWrite, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml", op.Path)
}

func TestClassify_BareRename(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Rename, "/var/log/app.log"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindRename, op.Kind)
	assert.Equal(t, "/var/log/app.log", op.Path)
	assert.InDelta(t, 0.6, op.Confidence, 1e-9)
}

func TestClassify_RenamePair(t *testing.T) {
	// mv a.log b.log：旧名 Rename + 新名 Create；操作记在被挪走的旧名上
	events := []fsnotify.Event{
		mkEv(fsnotify.Rename, "/var/log/a.log"),
		mkEv(fsnotify.Create, "/var/log/b.log"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindRename, op.Kind)
	assert.Equal(t, "/var/log/a.log", op.Path)
}

func TestClassify_Unknown(t *testing.T) {
	tests := []struct {
		name   string
		events []fsnotify.Event
	}{
		{name: "empty window", events: nil},
		{
			// 纯新建不属于任何保存模式
			name: "plain create",
			events: []fsnotify.Event{
				mkEv(fsnotify.Create, "/etc/app/new.txt"),
				mkEv(fsnotify.Write, "/etc/app/new.txt"),
			},
		},
		{
			name: "remove only",
			events: []fsnotify.Event{
				mkEv(fsnotify.Remove, "/etc/app/config.yaml"),
			},
		},
		{
			name: "chmod only",
			events: []fsnotify.Event{
				mkEv(fsnotify.Chmod, "/etc/app/config.yaml"),
			},
		},
		{
			// 全是临时文件噪声（vim 的目录可写性探测）
			name: "temp noise only",
			events: []fsnotify.Event{
				mkEv(fsnotify.Create, "/etc/app/4913"),
				mkEv(fsnotify.Remove, "/etc/app/4913"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := Classify(tt.events)

			assert.False(t, ok)
			assert.Equal(t, KindUnknown, op.Kind)
			assert.False(t, op.DetectedAt.IsZero())
			assert.Len(t, op.Events, len(tt.events))
		})
	}
}

func TestClassify_PicksLatestActiveTarget(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Write, "/var/log/a.log"),
		mkEv(fsnotify.Write, "/var/log/b.log"),
	}

	op, ok := Classify(events)

	require.True(t, ok)
	assert.Equal(t, KindInPlaceWrite, op.Kind)
	assert.Equal(t, "/var/log/b.log", op.Path, "最近活跃的真实文件优先")
}

func TestClassify_TempInOtherDirNotAssociated(t *testing.T) {
	// 跨目录的临时文件 rename 不能支撑目标目录里的 Create
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/tmp/config.yaml.tmp"),
		mkEv(fsnotify.Rename, "/tmp/config.yaml.tmp"),
		mkEv(fsnotify.Create, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events)

	assert.False(t, ok)
	assert.Equal(t, KindUnknown, op.Kind)
}

func TestClassify_CustomBackupPattern(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Create, "/etc/app/config.yaml.backup"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml.backup"),
		mkEv(fsnotify.Write, "/etc/app/config.yaml"),
	}

	op, ok := Classify(events,
		WithBackupPatterns(TempPattern{Suffix: ".backup"}))

	require.True(t, ok)
	assert.Equal(t, KindBackupThenSave, op.Kind)
	assert.Equal(t, "/etc/app/config.yaml.backup", op.BackupPath)
}

func TestClassify_NilOption(t *testing.T) {
	events := []fsnotify.Event{
		mkEv(fsnotify.Write, "/var/log/app.log"),
	}

	op, ok := Classify(events, nil)

	require.True(t, ok)
	assert.Equal(t, KindInPlaceWrite, op.Kind)
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindAtomicSave, "atomic_save"},
		{KindSafeWriteReplace, "safe_write_replace"},
		{KindBackupThenSave, "backup_then_save"},
		{KindInPlaceWrite, "in_place_write"},
		{KindDeleteRecreate, "delete_recreate"},
		{KindRename, "rename"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestTempPattern_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern TempPattern
		base    string
		want    bool
	}{
		{"suffix hit", TempPattern{Suffix: ".tmp"}, "config.yaml.tmp", true},
		{"suffix miss", TempPattern{Suffix: ".tmp"}, "config.yaml", false},
		{"prefix+suffix hit", TempPattern{Prefix: ".", Suffix: ".swp"}, ".config.yaml.swp", true},
		{"prefix miss", TempPattern{Prefix: ".", Suffix: ".swp"}, "config.yaml.swp", false},
		{"exact hit", TempPattern{Exact: "4913", Opaque: true}, "4913", true},
		{"exact miss", TempPattern{Exact: "4913", Opaque: true}, "4914", false},
		{"empty pattern never matches", TempPattern{}, "anything", false},
		{"empty base never matches", TempPattern{Suffix: ".tmp"}, "", false},
		{"emacs autosave", TempPattern{Prefix: "#", Suffix: "#"}, "#config.yaml#", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.Match(tt.base))
		})
	}
}

func TestTempPattern_Target(t *testing.T) {
	tests := []struct {
		name    string
		pattern TempPattern
		base    string
		want    string
		wantOK  bool
	}{
		{"strip suffix", TempPattern{Suffix: ".tmp"}, "config.yaml.tmp", "config.yaml", true},
		{"strip both", TempPattern{Prefix: ".", Suffix: ".swp"}, ".config.yaml.swp", "config.yaml", true},
		{"emacs lock", TempPattern{Prefix: ".#"}, ".#config.yaml", "config.yaml", true},
		{"opaque underivable", TempPattern{Prefix: ".goutputstream-", Opaque: true}, ".goutputstream-X3K2", "", false},
		{"exact underivable", TempPattern{Exact: "4913", Opaque: true}, "4913", "", false},
		{"stripped to empty", TempPattern{Suffix: ".tmp"}, ".tmp", "", false},
		{"no match no target", TempPattern{Suffix: ".tmp"}, "config.yaml", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.pattern.Target(tt.base)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
