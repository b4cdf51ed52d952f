package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// DefaultGrace is how long Terminate waits for a process to exit after
// SIGTERM before escalating to SIGKILL.
const DefaultGrace = 3 * time.Second

const pollInterval = 100 * time.Millisecond

// Outcome describes how a termination request concluded.
type Outcome int

const (
	// AlreadyGone means the process had exited before any signal was sent.
	AlreadyGone Outcome = iota
	// Exited means the process left within the grace window after SIGTERM.
	Exited
	// Forced means SIGKILL was needed after the grace window elapsed.
	Forced
)

// protectedPIDs must never be signalled, no matter what a scan claims.
var protectedPIDs = map[int]bool{
	0: true,
	1: true,
}

// Terminate requests a graceful stop: SIGTERM, a grace-window poll, then
// SIGKILL if the process is still running. A process that is already gone
// at any step is success, not an error.
func Terminate(ctx context.Context, pid int, grace time.Duration) (Outcome, error) {
	p, err := target(ctx, pid)
	if err != nil || p == nil {
		return AlreadyGone, err
	}
	if grace <= 0 {
		grace = DefaultGrace
	}

	if err := p.TerminateWithContext(ctx); err != nil {
		if gone(err) {
			return AlreadyGone, nil
		}
		return AlreadyGone, signalError("SIGTERM", pid, err)
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !Alive(pid) {
			return Exited, nil
		}
		select {
		case <-ctx.Done():
			return Exited, ctx.Err()
		case <-time.After(pollInterval):
		}
	}

	if !Alive(pid) {
		return Exited, nil
	}

	if err := p.KillWithContext(ctx); err != nil && !gone(err) {
		return Forced, signalError("SIGKILL", pid, err)
	}
	return Forced, nil
}

// Kill sends SIGKILL immediately.
func Kill(ctx context.Context, pid int) error {
	p, err := target(ctx, pid)
	if err != nil || p == nil {
		return err
	}
	if err := p.KillWithContext(ctx); err != nil && !gone(err) {
		return signalError("SIGKILL", pid, err)
	}
	return nil
}

// Signal sends an arbitrary signal. Like Terminate, a target that has
// already exited is treated as success.
func Signal(ctx context.Context, pid int, sig syscall.Signal) error {
	p, err := target(ctx, pid)
	if err != nil || p == nil {
		return err
	}
	if err := p.SendSignalWithContext(ctx, sig); err != nil && !gone(err) {
		return signalError(SignalName(sig), pid, err)
	}
	return nil
}

// target resolves a PID to a handle, enforcing the protected-PID guard.
// A nil handle with nil error means the process has already exited.
func target(ctx context.Context, pid int) (*process.Process, error) {
	if protectedPIDs[pid] || pid < 0 {
		return nil, fmt.Errorf("refusing to signal protected PID %d", pid)
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		if gone(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up PID %d: %w", pid, err)
	}
	return p, nil
}

// gone reports whether an error means the target process no longer exists.
func gone(err error) bool {
	return errors.Is(err, process.ErrorProcessNotRunning) ||
		errors.Is(err, os.ErrProcessDone) ||
		errors.Is(err, syscall.ESRCH)
}

// signalError wraps a signalling failure, calling out permission problems
// since they are the common case when targeting another user's process.
func signalError(sig string, pid int, err error) error {
	if errors.Is(err, syscall.EPERM) || errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("permission denied sending %s to PID %d (try again with elevated privileges)", sig, pid)
	}
	return fmt.Errorf("failed to send %s to PID %d: %w", sig, pid, err)
}
