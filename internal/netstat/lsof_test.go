package netstat

import (
	"strings"
	"testing"
)

const lsofFieldSample = `p312
cnode
u501
PTCP
n*:3000
TST=LISTEN
PTCP
n127.0.0.1:3001
TST=LISTEN
p845
cpostgres
u502
PTCP
n127.0.0.1:5432
TST=LISTEN
p990
cmDNSResponder
u65
PUDP
n*:5353
p1201
cchrome
u501
PTCP
n192.168.1.10:54321->93.184.216.34:443
TST=ESTABLISHED
`

func TestParseLsofFields(t *testing.T) {
	bindings := parseLsofFields(strings.NewReader(lsofFieldSample))

	if len(bindings) != 5 {
		t.Fatalf("expected 5 bindings, got %d", len(bindings))
	}

	tests := []struct {
		idx     int
		port    int
		proto   Protocol
		addr    string
		state   string
		pid     int
		process string
		user    string
	}{
		{0, 3000, TCP, "*", "LISTEN", 312, "node", "501"},
		{1, 3001, TCP, "127.0.0.1", "LISTEN", 312, "node", "501"},
		{2, 5432, TCP, "127.0.0.1", "LISTEN", 845, "postgres", "502"},
		{3, 5353, UDP, "*", "BOUND", 990, "mDNSResponder", "65"},
		{4, 54321, TCP, "192.168.1.10", "ESTABLISHED", 1201, "chrome", "501"},
	}

	for _, tt := range tests {
		b := bindings[tt.idx]
		if b.Port != tt.port {
			t.Errorf("[%d] port: got %d, want %d", tt.idx, b.Port, tt.port)
		}
		if b.Protocol != tt.proto {
			t.Errorf("[%d] proto: got %q, want %q", tt.idx, b.Protocol, tt.proto)
		}
		if b.Addr != tt.addr {
			t.Errorf("[%d] addr: got %q, want %q", tt.idx, b.Addr, tt.addr)
		}
		if b.State != tt.state {
			t.Errorf("[%d] state: got %q, want %q", tt.idx, b.State, tt.state)
		}
		if b.PID != tt.pid {
			t.Errorf("[%d] pid: got %d, want %d", tt.idx, b.PID, tt.pid)
		}
		if b.Process != tt.process {
			t.Errorf("[%d] process: got %q, want %q", tt.idx, b.Process, tt.process)
		}
		if b.User != tt.user {
			t.Errorf("[%d] user: got %q, want %q", tt.idx, b.User, tt.user)
		}
	}
}

func TestParseLsofFieldsEmpty(t *testing.T) {
	if got := parseLsofFields(strings.NewReader("")); len(got) != 0 {
		t.Errorf("expected 0 bindings, got %d", len(got))
	}
}

func TestParseLsofFieldsIPv6(t *testing.T) {
	input := "p77\ncbeam\nu501\nPTCP\nn[::1]:4369\nTST=LISTEN\n"
	bindings := parseLsofFields(strings.NewReader(input))
	if len(bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(bindings))
	}
	if bindings[0].Addr != "::1" {
		t.Errorf("addr: got %q, want ::1", bindings[0].Addr)
	}
	if bindings[0].Port != 4369 {
		t.Errorf("port: got %d, want 4369", bindings[0].Port)
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantAddr string
		wantPort int
		wantOK   bool
	}{
		{"wildcard", "*:8080", "*", 8080, true},
		{"loopback", "127.0.0.1:3000", "127.0.0.1", 3000, true},
		{"any v4", "0.0.0.0:80", "*", 80, true},
		{"any v6", "[::]:80", "*", 80, true},
		{"bracketed v6", "[fe80::1]:22", "fe80::1", 22, true},
		{"established", "10.0.0.5:54321->93.184.216.34:443", "10.0.0.5", 54321, true},
		{"wildcard port", "*:*", "", 0, false},
		{"no port", "localhost", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, port, ok := splitHostPort(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if addr != tt.wantAddr {
				t.Errorf("addr: got %q, want %q", addr, tt.wantAddr)
			}
			if port != tt.wantPort {
				t.Errorf("port: got %d, want %d", port, tt.wantPort)
			}
		})
	}
}
