// Package netstat resolves network ports to the processes bound to them.
//
// The enumeration mechanism differs per platform (procfs on Linux, lsof on
// macOS); each variant is selected at build time and exposed through the
// same Snapshot/Lookup surface.
package netstat

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
)

// Protocol represents a transport protocol.
type Protocol string

const (
	TCP Protocol = "TCP"
	UDP Protocol = "UDP"
)

// MaxPort is the highest valid port number.
const MaxPort = 65535

// ErrUnsupported is returned on platforms without an enumeration backend.
var ErrUnsupported = errors.New("port enumeration is not supported on " + runtime.GOOS)

// Binding is a single observation of a port held by a local socket.
// It is constructed fresh per scan and never persisted; the PID it names
// is only guaranteed to exist at observation time.
type Binding struct {
	Port     int
	Protocol Protocol
	Addr     string // local address the socket is bound to, e.g. "127.0.0.1" or "*"
	State    string // LISTEN, BOUND (connectionless), ESTABLISHED, ...
	PID      int    // 0 when the owner is not visible to the caller
	Process  string // short process name, best effort
	User     string // owning user, best effort
	Command  string // full command line, best effort
}

// String returns a human-readable representation of the binding.
func (b Binding) String() string {
	return fmt.Sprintf("%d/%s (PID %d, %s)", b.Port, b.Protocol, b.PID, b.Process)
}

// Owned reports whether the owning process of the socket is known.
func (b Binding) Owned() bool {
	return b.PID > 0
}

// Query selects bindings by port and, optionally, protocol.
type Query struct {
	Port     int
	Protocol Protocol // empty matches both TCP and UDP
}

// Snapshot enumerates all sockets currently bound by local processes,
// sorted by port. Sockets whose owner is not visible (typically a
// permissions issue) are still included, with PID 0.
func Snapshot(ctx context.Context) ([]Binding, error) {
	bindings, err := snapshot(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bindings, func(i, j int) bool {
		if bindings[i].Port != bindings[j].Port {
			return bindings[i].Port < bindings[j].Port
		}
		return bindings[i].Protocol < bindings[j].Protocol
	})
	return bindings, nil
}

// Lookup returns the bindings matching q. An unbound port yields an empty
// result, not an error.
func Lookup(ctx context.Context, q Query) ([]Binding, error) {
	if q.Port < 1 || q.Port > MaxPort {
		return nil, fmt.Errorf("port %d out of range (1-%d)", q.Port, MaxPort)
	}
	all, err := Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return match(all, q), nil
}

// match filters bindings down to those selected by q.
func match(bindings []Binding, q Query) []Binding {
	var out []Binding
	for _, b := range bindings {
		if b.Port != q.Port {
			continue
		}
		if q.Protocol != "" && b.Protocol != q.Protocol {
			continue
		}
		out = append(out, b)
	}
	return out
}

// ParsePort validates a user-supplied port argument. It rejects anything
// outside 1-65535 before any OS query happens.
func ParsePort(s string) (int, error) {
	s = strings.TrimSpace(s)
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: not a number", s)
	}
	if port < 1 || port > MaxPort {
		return 0, fmt.Errorf("invalid port %d: must be between 1 and %d", port, MaxPort)
	}
	return port, nil
}

// ParseProtocol validates a --protocol flag value. Empty means both.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "tcp":
		return TCP, nil
	case "udp":
		return UDP, nil
	default:
		return "", fmt.Errorf("invalid protocol %q: use tcp or udp", s)
	}
}
