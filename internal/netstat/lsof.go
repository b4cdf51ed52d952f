package netstat

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// parseLsofFields decodes lsof field output (-F pcuPnT). Fields arrive as
// one-per-line records: process-level fields (p, c, u) start a new process
// group, then each file contributes P (protocol) and n (local address)
// lines, with TCP state trailing as "TST=...". A binding is emitted per n
// line and its state patched when the T field follows.
func parseLsofFields(r io.Reader) []Binding {
	var (
		bindings []Binding
		pid      int
		command  string
		uid      string
		proto    Protocol
		last     = -1 // index of the binding awaiting its state field
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 2 {
			continue
		}
		value := line[1:]

		switch line[0] {
		case 'p':
			if n, err := strconv.Atoi(value); err == nil {
				pid = n
			}
			command, uid = "", ""
			last = -1
		case 'c':
			command = value
		case 'u':
			uid = value
		case 'P':
			proto = Protocol(strings.ToUpper(value))
			last = -1
		case 'n':
			addr, port, ok := splitHostPort(value)
			if !ok {
				last = -1
				continue
			}
			state := ""
			if proto == UDP {
				// UDP files carry no connection state.
				state = "BOUND"
			}
			bindings = append(bindings, Binding{
				Port:     port,
				Protocol: proto,
				Addr:     addr,
				State:    state,
				PID:      pid,
				Process:  command,
				User:     uid,
			})
			last = len(bindings) - 1
		case 'T':
			if st, ok := strings.CutPrefix(value, "ST="); ok && last >= 0 {
				bindings[last].State = st
			}
		}
	}
	return bindings
}

// splitHostPort extracts the local address and port from an lsof NAME
// value: "*:8080", "127.0.0.1:8080", "[::1]:8080", or
// "10.0.0.5:54321->93.184.216.34:443" for established connections.
func splitHostPort(name string) (string, int, bool) {
	local := name
	if idx := strings.Index(name, "->"); idx != -1 {
		local = name[:idx]
	}

	idx := strings.LastIndex(local, ":")
	if idx == -1 {
		return "", 0, false
	}

	addr := strings.Trim(local[:idx], "[]")
	port, err := strconv.Atoi(local[idx+1:])
	if err != nil || port < 1 || port > MaxPort {
		return "", 0, false
	}
	if addr == "" || addr == "0.0.0.0" || addr == "::" {
		addr = "*"
	}
	return addr, port, true
}
