package xdbg

import (
	"slices"
	"sync"
)

// registry 命令注册表。并发安全；同名注册覆盖旧命令。
type registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func newRegistry() *registry {
	return &registry{commands: make(map[string]Command)}
}

func (r *registry) register(cmd Command) {
	r.mu.Lock()
	r.commands[cmd.Name()] = cmd
	r.mu.Unlock()
}

// get 返回命令；未注册时为 nil。
func (r *registry) get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// all 返回全部命令，按名字排序。
func (r *registry) all() []Command {
	r.mu.RLock()
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	cmds := make([]Command, 0, len(names))
	for _, name := range names {
		cmds = append(cmds, r.commands[name])
	}
	r.mu.RUnlock()
	return cmds
}
