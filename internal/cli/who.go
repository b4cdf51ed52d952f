package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Thegreatsura/portwitch/internal/netstat"
)

var whoCmd = &cobra.Command{
	Use:   "who <port>",
	Short: "Show which process is using a port",
	Long: `Resolve a port to the process(es) currently bound to it.

Exits with a non-zero status when the port is not in use.`,
	Args: cobra.ExactArgs(1),
	RunE: runWho,
}

func runWho(cmd *cobra.Command, args []string) error {
	port, err := netstat.ParsePort(args[0])
	if err != nil {
		return err
	}
	proto, err := netstat.ParseProtocol(protoFlag)
	if err != nil {
		return err
	}

	ctx := context.Background()
	bindings, err := netstat.Lookup(ctx, netstat.Query{Port: port, Protocol: proto})
	if err != nil {
		return fmt.Errorf("failed to resolve port %d: %w", port, err)
	}

	if len(bindings) == 0 {
		if jsonOutput {
			printBindingsJSON(nil)
		}
		return fmt.Errorf("no process is using port %d", port)
	}

	if jsonOutput {
		return printBindingsJSON(bindings)
	}
	return printBindingsTable(bindings)
}

func printBindingsTable(bindings []netstat.Binding) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPROTO\tADDR\tSTATE\tPID\tPROCESS\tUSER")
	for _, b := range bindings {
		pid, proc := strconv.Itoa(b.PID), b.Process
		if !b.Owned() {
			// Owner hidden from this user; the port is still taken.
			pid, proc = "-", "(not visible, try sudo)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Port, b.Protocol, b.Addr, b.State, pid, proc, b.User)
	}
	return w.Flush()
}

func printBindingsJSON(bindings []netstat.Binding) error {
	type jsonBinding struct {
		Port     int    `json:"port"`
		Protocol string `json:"protocol"`
		Addr     string `json:"addr"`
		State    string `json:"state"`
		PID      int    `json:"pid"`
		Process  string `json:"process"`
		User     string `json:"user"`
		Command  string `json:"command,omitempty"`
	}

	out := make([]jsonBinding, len(bindings))
	for i, b := range bindings {
		out[i] = jsonBinding{
			Port:     b.Port,
			Protocol: string(b.Protocol),
			Addr:     b.Addr,
			State:    b.State,
			PID:      b.PID,
			Process:  b.Process,
			User:     b.User,
			Command:  b.Command,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
