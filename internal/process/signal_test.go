//go:build !windows

package process

import (
	"syscall"
	"testing"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		input   string
		want    syscall.Signal
		wantErr bool
	}{
		{"TERM", syscall.SIGTERM, false},
		{"SIGTERM", syscall.SIGTERM, false},
		{"sigterm", syscall.SIGTERM, false},
		{"KILL", syscall.SIGKILL, false},
		{"SIGKILL", syscall.SIGKILL, false},
		{"int", syscall.SIGINT, false},
		{"HUP", syscall.SIGHUP, false},
		{"USR1", syscall.SIGUSR1, false},
		{"USR2", syscall.SIGUSR2, false},
		{" QUIT ", syscall.SIGQUIT, false},
		{"STOP", 0, true},
		{"9", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSignal(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSignal(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSignal(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSignal(%q): got %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSignalName(t *testing.T) {
	if got := SignalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("SIGTERM name: got %q", got)
	}
	if got := SignalName(syscall.SIGKILL); got != "SIGKILL" {
		t.Errorf("SIGKILL name: got %q", got)
	}
	if got := SignalName(syscall.Signal(63)); got != "signal(63)" {
		t.Errorf("unknown signal name: got %q", got)
	}
}
