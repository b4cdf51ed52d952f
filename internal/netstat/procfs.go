package netstat

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// procSocket is one row of a /proc/net socket table, before the owning
// process has been identified.
type procSocket struct {
	Addr  string
	Port  int
	Proto Protocol
	State string
	Inode uint64
}

// Kernel socket state codes as they appear (hex) in /proc/net tables.
var tcpStates = map[string]string{
	"01": "ESTABLISHED",
	"02": "SYN_SENT",
	"03": "SYN_RECV",
	"04": "FIN_WAIT1",
	"05": "FIN_WAIT2",
	"06": "TIME_WAIT",
	"07": "CLOSE",
	"08": "CLOSE_WAIT",
	"09": "LAST_ACK",
	"0A": "LISTEN",
	"0B": "CLOSING",
}

// parseProcNet decodes a /proc/net/{tcp,tcp6,udp,udp6} table. Rows without
// an inode are anonymous kernel sockets and are skipped.
func parseProcNet(r io.Reader, proto Protocol) ([]procSocket, error) {
	scanner := bufio.NewScanner(r)

	// Header line.
	if !scanner.Scan() {
		return nil, scanner.Err()
	}

	var sockets []procSocket
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 10 {
			continue
		}

		addr, port, err := decodeHexAddr(fields[1])
		if err != nil {
			continue
		}

		inode, err := strconv.ParseUint(fields[9], 10, 64)
		if err != nil || inode == 0 {
			continue
		}

		sockets = append(sockets, procSocket{
			Addr:  addr,
			Port:  port,
			Proto: proto,
			State: socketState(proto, fields[3]),
			Inode: inode,
		})
	}
	return sockets, scanner.Err()
}

// decodeHexAddr decodes the kernel's ADDR:PORT notation, e.g.
// "0100007F:0050" for 127.0.0.1:80. The address bytes are in host order
// per 32-bit word, so each word has to be reversed.
func decodeHexAddr(s string) (string, int, error) {
	ipHex, portHex, ok := strings.Cut(s, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed address %q", s)
	}

	port, err := strconv.ParseInt(portHex, 16, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed port in %q: %w", s, err)
	}

	raw, err := hex.DecodeString(ipHex)
	if err != nil {
		return "", 0, fmt.Errorf("malformed address in %q: %w", s, err)
	}

	var ip net.IP
	switch len(raw) {
	case 4:
		ip = net.IP{raw[3], raw[2], raw[1], raw[0]}
	case 16:
		ip = make(net.IP, 16)
		for word := 0; word < 4; word++ {
			for i := 0; i < 4; i++ {
				ip[word*4+i] = raw[word*4+3-i]
			}
		}
	default:
		return "", 0, fmt.Errorf("unexpected address length in %q", s)
	}

	addr := ip.String()
	if ip.IsUnspecified() {
		addr = "*"
	}
	return addr, int(port), nil
}

// socketState maps the hex state field to a display name. UDP sockets have
// no connection state; the kernel reports unconnected ones as CLOSE (07),
// which we surface as BOUND.
func socketState(proto Protocol, hexState string) string {
	if proto == UDP {
		if hexState == "01" {
			return "ESTABLISHED"
		}
		return "BOUND"
	}
	if state, ok := tcpStates[strings.ToUpper(hexState)]; ok {
		return state
	}
	return "UNKNOWN"
}
