package netstat

import (
	"strings"
	"testing"
)

const procNetTCPSample = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 0100007F:1538 00000000:0000 0A 00000000:00000000 00:00000000 00000000   976        0 21455 1 0000000000000000 100 0 0 10 0
   1: 00000000:0050 00000000:0000 0A 00000000:00000000 00:00000000 00000000     0        0 18883 1 0000000000000000 100 0 0 10 0
   2: 0A00020F:B0A2 5DB8D822:01BB 01 00000000:00000000 02:000004A5 00000000  1000        0 33872 2 0000000000000000 25 4 30 10 -1
   3: 00000000:1F90 00000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 0 1 0000000000000000 100 0 0 10 0
`

const procNetTCP6Sample = `  sl  local_address                         remote_address                        st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode
   0: 00000000000000000000000000000000:0BB8 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 44123 1 0000000000000000 100 0 0 10 0
   1: 00000000000000000000000001000000:1F40 00000000000000000000000000000000:0000 0A 00000000:00000000 00:00000000 00000000  1000        0 44124 1 0000000000000000 100 0 0 10 0
`

const procNetUDPSample = `  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode ref pointer drops
  100: 0100007F:0035 00000000:0000 07 00000000:00000000 00:00000000 00000000   991        0 19776 2 0000000000000000 0
`

func TestParseProcNetTCP(t *testing.T) {
	sockets, err := parseProcNet(strings.NewReader(procNetTCPSample), TCP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Row 3 has inode 0 and must be skipped.
	if len(sockets) != 3 {
		t.Fatalf("expected 3 sockets, got %d", len(sockets))
	}

	tests := []struct {
		idx   int
		addr  string
		port  int
		state string
		inode uint64
	}{
		{0, "127.0.0.1", 5432, "LISTEN", 21455},
		{1, "*", 80, "LISTEN", 18883},
		{2, "15.2.0.10", 45218, "ESTABLISHED", 33872},
	}

	for _, tt := range tests {
		s := sockets[tt.idx]
		if s.Addr != tt.addr {
			t.Errorf("[%d] addr: got %q, want %q", tt.idx, s.Addr, tt.addr)
		}
		if s.Port != tt.port {
			t.Errorf("[%d] port: got %d, want %d", tt.idx, s.Port, tt.port)
		}
		if s.State != tt.state {
			t.Errorf("[%d] state: got %q, want %q", tt.idx, s.State, tt.state)
		}
		if s.Inode != tt.inode {
			t.Errorf("[%d] inode: got %d, want %d", tt.idx, s.Inode, tt.inode)
		}
		if s.Proto != TCP {
			t.Errorf("[%d] proto: got %q, want TCP", tt.idx, s.Proto)
		}
	}
}

func TestParseProcNetTCP6(t *testing.T) {
	sockets, err := parseProcNet(strings.NewReader(procNetTCP6Sample), TCP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sockets) != 2 {
		t.Fatalf("expected 2 sockets, got %d", len(sockets))
	}

	if sockets[0].Addr != "*" || sockets[0].Port != 3000 {
		t.Errorf("wildcard v6: got %s:%d, want *:3000", sockets[0].Addr, sockets[0].Port)
	}
	if sockets[1].Addr != "::1" || sockets[1].Port != 8000 {
		t.Errorf("loopback v6: got %s:%d, want ::1:8000", sockets[1].Addr, sockets[1].Port)
	}
}

func TestParseProcNetUDP(t *testing.T) {
	sockets, err := parseProcNet(strings.NewReader(procNetUDPSample), UDP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sockets) != 1 {
		t.Fatalf("expected 1 socket, got %d", len(sockets))
	}

	s := sockets[0]
	if s.Port != 53 {
		t.Errorf("port: got %d, want 53", s.Port)
	}
	if s.State != "BOUND" {
		t.Errorf("state: got %q, want BOUND", s.State)
	}
	if s.Proto != UDP {
		t.Errorf("proto: got %q, want UDP", s.Proto)
	}
}

func TestParseProcNetEmpty(t *testing.T) {
	sockets, err := parseProcNet(strings.NewReader(""), TCP)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sockets) != 0 {
		t.Errorf("expected 0 sockets, got %d", len(sockets))
	}
}

func TestDecodeHexAddr(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantAddr string
		wantPort int
		wantErr  bool
	}{
		{"loopback v4", "0100007F:0050", "127.0.0.1", 80, false},
		{"any v4", "00000000:1F90", "*", 8080, false},
		{"private v4", "0F02000A:01BB", "10.0.2.15", 443, false},
		{"any v6", "00000000000000000000000000000000:0016", "*", 22, false},
		{"loopback v6", "00000000000000000000000001000000:0BB8", "::1", 3000, false},
		{"missing colon", "0100007F", "", 0, true},
		{"bad hex", "ZZZZZZZZ:0050", "", 0, true},
		{"odd length", "0100007:0050", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, port, err := decodeHexAddr(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s:%d", addr, port)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
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

func TestSocketState(t *testing.T) {
	if got := socketState(TCP, "0A"); got != "LISTEN" {
		t.Errorf("tcp 0A: got %q, want LISTEN", got)
	}
	if got := socketState(TCP, "01"); got != "ESTABLISHED" {
		t.Errorf("tcp 01: got %q, want ESTABLISHED", got)
	}
	if got := socketState(TCP, "FF"); got != "UNKNOWN" {
		t.Errorf("tcp FF: got %q, want UNKNOWN", got)
	}
	if got := socketState(UDP, "07"); got != "BOUND" {
		t.Errorf("udp 07: got %q, want BOUND", got)
	}
	if got := socketState(UDP, "01"); got != "ESTABLISHED" {
		t.Errorf("udp 01: got %q, want ESTABLISHED", got)
	}
}
