package cli

import (
	"testing"

	"github.com/Thegreatsura/portwitch/internal/netstat"
)

func TestKillTargets(t *testing.T) {
	bindings := []netstat.Binding{
		{Port: 3000, Protocol: netstat.TCP, State: "LISTEN", PID: 100, Process: "node"},
		{Port: 3000, Protocol: netstat.TCP, State: "LISTEN", PID: 100, Process: "node"}, // dual-stack duplicate
		{Port: 3000, Protocol: netstat.UDP, State: "BOUND", PID: 200, Process: "coredns"},
		{Port: 3000, Protocol: netstat.TCP, State: "ESTABLISHED", PID: 300, Process: "chrome"},
		{Port: 3000, Protocol: netstat.TCP, State: "LISTEN", PID: 0}, // hidden owner
	}

	targets := killTargets(bindings)

	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].PID != 100 {
		t.Errorf("target[0] pid: got %d, want 100", targets[0].PID)
	}
	if targets[1].PID != 200 {
		t.Errorf("target[1] pid: got %d, want 200", targets[1].PID)
	}
}

func TestKillTargetsEmpty(t *testing.T) {
	if got := killTargets(nil); len(got) != 0 {
		t.Errorf("expected no targets, got %d", len(got))
	}
}

func TestHasHiddenOwner(t *testing.T) {
	visible := []netstat.Binding{
		{Port: 80, State: "LISTEN", PID: 10, Process: "nginx"},
	}
	if hasHiddenOwner(visible) {
		t.Error("visible owner reported as hidden")
	}

	hidden := []netstat.Binding{
		{Port: 80, State: "LISTEN", PID: 0},
	}
	if !hasHiddenOwner(hidden) {
		t.Error("hidden owner not detected")
	}

	established := []netstat.Binding{
		{Port: 80, State: "ESTABLISHED", PID: 0},
	}
	if hasHiddenOwner(established) {
		t.Error("non-listener should not count as hidden owner")
	}
}
