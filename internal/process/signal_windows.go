//go:build windows

package process

import (
	"fmt"
	"strings"
	"syscall"
)

// Windows has no real POSIX signal delivery; gopsutil maps SIGKILL and
// SIGTERM to TerminateProcess. Only those names are accepted here.
var signalsByName = map[string]syscall.Signal{
	"KILL": syscall.SIGKILL,
	"TERM": syscall.SIGTERM,
}

// ParseSignal resolves a signal name like "TERM" or "SIGKILL".
func ParseSignal(name string) (syscall.Signal, error) {
	key := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "SIG")
	if sig, ok := signalsByName[key]; ok {
		return sig, nil
	}
	return 0, fmt.Errorf("unknown signal %q", name)
}

// SignalName returns the conventional SIG-prefixed name.
func SignalName(sig syscall.Signal) string {
	for name, s := range signalsByName {
		if s == sig {
			return "SIG" + name
		}
	}
	return fmt.Sprintf("signal(%d)", sig)
}
