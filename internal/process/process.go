// Package process inspects and terminates running processes by PID.
package process

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Info holds identifying details for a running process.
type Info struct {
	PID     int
	PPID    int
	Name    string
	User    string
	Command string // full command line
	Started time.Time
}

// Alive reports whether a process with the given PID currently exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExists(int32(pid))
	return err == nil && exists
}

// Describe returns best-effort details about a process. Only the lookup
// itself is fatal; individual attributes that cannot be read (permissions,
// races with exit) are left zero.
func Describe(ctx context.Context, pid int) (*Info, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, fmt.Errorf("process %d not found: %w", pid, err)
	}

	info := &Info{PID: pid}
	if name, err := p.NameWithContext(ctx); err == nil {
		info.Name = name
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		info.User = user
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
		info.Command = cmdline
	}
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		info.PPID = int(ppid)
	}
	if created, err := p.CreateTimeWithContext(ctx); err == nil && created > 0 {
		info.Started = time.UnixMilli(created)
	}
	return info, nil
}
