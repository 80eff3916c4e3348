package xdbg

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/omeyang/basekit/pkg/concurrency/xlock"
	"github.com/omeyang/basekit/pkg/observability/xlog"
)

// registerDiagnostics 注册依赖注入组件的诊断命令。
// 组件未配置时命令仍然注册（出现在 help 里），执行时报
// [ErrNotConfigured]，提示调用方去补选项而不是猜命令名拼错了。
func (s *Server) registerDiagnostics() {
	s.registry.register(&locksCommand{server: s})
	s.registry.register(&deadlocksCommand{server: s})
	s.registry.register(&loglevelCommand{server: s})
}

// locksCommand locks 命令：打印锁注册表快照。
type locksCommand struct {
	server *Server
}

func (c *locksCommand) Name() string { return "locks" }

func (c *locksCommand) Help() string { return "查看锁注册表状态（顺序号、持有者、持有时长）" }

func (c *locksCommand) Execute(ctx context.Context, _ []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m := c.server.opts.manager
	if m == nil {
		return "", fmt.Errorf("%w: lock manager (use WithManager)", ErrNotConfigured)
	}

	statuses := make([]xlock.Status, 0)
	for _, st := range m.Status() {
		statuses = append(statuses, st)
	}
	if len(statuses) == 0 {
		return "no locks registered", nil
	}
	slices.SortFunc(statuses, func(a, b xlock.Status) int { return cmp.Compare(a.Order, b.Order) })

	now := time.Now()
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tNAME\tHELD\tOWNER\tHOLDER\tHELD_FOR\tDESCRIPTION")
	for _, st := range statuses {
		heldFor := "-"
		owner := "-"
		holder := "-"
		if !st.AcquiredAt.IsZero() {
			heldFor = now.Sub(st.AcquiredAt).Round(time.Millisecond).String()
			owner = fmt.Sprintf("%d", st.Owner)
			if st.Holder != "" {
				holder = st.Holder
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\t%s\t%s\n",
			st.Order, st.Name, st.Held, owner, holder, heldFor, st.Description)
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// deadlocksCommand deadlocks 命令：执行一次长持有检测。
type deadlocksCommand struct {
	server *Server
}

func (c *deadlocksCommand) Name() string { return "deadlocks" }

func (c *deadlocksCommand) Help() string { return "检测持有超过阈值的锁（潜在死锁启发式）" }

func (c *deadlocksCommand) Execute(ctx context.Context, _ []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m := c.server.opts.manager
	if m == nil {
		return "", fmt.Errorf("%w: lock manager (use WithManager)", ErrNotConfigured)
	}

	warns := m.DetectPotentialDeadlocks()
	if len(warns) == 0 {
		return "no potential deadlocks", nil
	}
	lines := make([]string, 0, len(warns))
	for _, w := range warns {
		lines = append(lines, w.String())
	}
	return strings.Join(lines, "\n"), nil
}

// loglevelCommand loglevel 命令：查看或调整日志级别。
type loglevelCommand struct {
	server *Server
}

func (c *loglevelCommand) Name() string { return "loglevel" }

func (c *loglevelCommand) Help() string { return "查看日志级别；loglevel <debug|info|warn|error> 调整" }

func (c *loglevelCommand) Execute(ctx context.Context, args []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	leveler := c.server.opts.leveler
	if leveler == nil {
		return "", fmt.Errorf("%w: log leveler (use WithLeveler)", ErrNotConfigured)
	}

	if len(args) == 0 {
		return fmt.Sprintf("current level: %s", leveler.GetLevel()), nil
	}

	level, err := xlog.ParseLevel(args[0])
	if err != nil {
		return "", err
	}
	leveler.SetLevel(level)
	return fmt.Sprintf("level set to %s", level), nil
}
