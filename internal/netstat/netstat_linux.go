//go:build linux

package netstat

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// procNetTables lists the socket tables to scan, per protocol.
var procNetTables = []struct {
	path  string
	proto Protocol
}{
	{"/proc/net/tcp", TCP},
	{"/proc/net/tcp6", TCP},
	{"/proc/net/udp", UDP},
	{"/proc/net/udp6", UDP},
}

// snapshot enumerates sockets from /proc/net and walks /proc/<pid>/fd to
// find their owners. File descriptor directories the caller cannot read
// are skipped, so results degrade to ownerless bindings rather than
// failing outright.
func snapshot(ctx context.Context) ([]Binding, error) {
	var sockets []procSocket

	for _, table := range procNetTables {
		f, err := os.Open(table.path)
		if err != nil {
			// udp6/tcp6 may be absent when the family is disabled.
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open %s: %w", table.path, err)
		}
		parsed, err := parseProcNet(f, table.proto)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", table.path, err)
		}
		sockets = append(sockets, parsed...)
	}

	owners, err := inodeOwners(ctx, inodeSet(sockets))
	if err != nil {
		return nil, err
	}

	bindings := make([]Binding, 0, len(sockets))
	for _, s := range sockets {
		b := Binding{
			Port:     s.Port,
			Protocol: s.Proto,
			Addr:     s.Addr,
			State:    s.State,
			PID:      owners[s.Inode],
		}
		if b.PID > 0 {
			enrich(ctx, &b)
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// inodeSet collects the socket inodes worth resolving.
func inodeSet(sockets []procSocket) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(sockets))
	for _, s := range sockets {
		set[s.Inode] = struct{}{}
	}
	return set
}

// inodeOwners walks /proc/<pid>/fd looking for socket:[inode] links and
// returns the PID owning each wanted inode.
func inodeOwners(ctx context.Context, wanted map[uint64]struct{}) (map[uint64]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("failed to read /proc: %w", err)
	}

	owners := make(map[uint64]int)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		fdDir := filepath.Join("/proc", entry.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			// Unreadable: another user's process. Partial results are fine.
			continue
		}

		for _, fd := range fds {
			link, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			inodeStr, ok := strings.CutPrefix(link, "socket:[")
			if !ok {
				continue
			}
			inode, err := strconv.ParseUint(strings.TrimSuffix(inodeStr, "]"), 10, 64)
			if err != nil {
				continue
			}
			if _, want := wanted[inode]; want {
				owners[inode] = pid
			}
		}
	}
	return owners, nil
}

// enrich fills in process name, user and command line for a binding whose
// PID is known. Failures leave the fields empty; the process may already
// be gone.
func enrich(ctx context.Context, b *Binding) {
	p, err := process.NewProcessWithContext(ctx, int32(b.PID))
	if err != nil {
		return
	}
	if name, err := p.NameWithContext(ctx); err == nil {
		b.Process = name
	}
	if user, err := p.UsernameWithContext(ctx); err == nil {
		b.User = user
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
		b.Command = cmdline
	}
}
