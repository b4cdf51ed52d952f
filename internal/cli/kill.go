package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Thegreatsura/portwitch/internal/config"
	"github.com/Thegreatsura/portwitch/internal/netstat"
	"github.com/Thegreatsura/portwitch/internal/process"
)

var (
	forceKill  bool
	signalFlag string
	assumeYes  bool
)

var killCmd = &cobra.Command{
	Use:   "kill <port>",
	Short: "Kill the process using a port",
	Long: `Resolve a port to its owning process and terminate it.

By default the process gets SIGTERM and, if it has not exited within the
grace window, SIGKILL. A process that is already gone counts as success.`,
	Args: cobra.ExactArgs(1),
	RunE: runKill,
}

func init() {
	killCmd.Flags().BoolVar(&forceKill, "force", false, "Send SIGKILL immediately")
	killCmd.Flags().StringVar(&signalFlag, "signal", "", "Send a specific signal instead (e.g. SIGINT, SIGHUP)")
	killCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

func runKill(cmd *cobra.Command, args []string) error {
	port, err := netstat.ParsePort(args[0])
	if err != nil {
		return err
	}
	proto, err := netstat.ParseProtocol(protoFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	sigName := signalFlag
	if sigName == "" && !strings.EqualFold(cfg.KillSignal, "SIGTERM") {
		sigName = cfg.KillSignal
	}

	ctx := context.Background()
	bindings, err := netstat.Lookup(ctx, netstat.Query{Port: port, Protocol: proto})
	if err != nil {
		return fmt.Errorf("failed to resolve port %d: %w", port, err)
	}

	targets := killTargets(bindings)
	if len(targets) == 0 {
		if hasHiddenOwner(bindings) {
			return fmt.Errorf("port %d is in use but its owner is not visible; retry with elevated privileges", port)
		}
		return fmt.Errorf("no process is using port %d", port)
	}

	if cfg.ConfirmKill && !assumeYes {
		if !confirm(targets, port) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	grace := time.Duration(cfg.KillGraceSecs) * time.Second
	for _, b := range targets {
		// The PID may have been reused since the scan; make sure it still
		// looks like the process we resolved.
		if changed, name := identityChanged(ctx, b); changed {
			fmt.Printf("Skipping PID %d: now running %q, expected %q.\n", b.PID, name, b.Process)
			continue
		}

		if err := killOne(ctx, b, sigName, grace); err != nil {
			return err
		}
	}
	return nil
}

// killTargets picks the bindings worth signalling: holders of the port,
// one per PID.
func killTargets(bindings []netstat.Binding) []netstat.Binding {
	seen := make(map[int]bool)
	var targets []netstat.Binding
	for _, b := range bindings {
		if !b.Owned() || seen[b.PID] {
			continue
		}
		if b.State != "LISTEN" && b.State != "BOUND" {
			continue
		}
		seen[b.PID] = true
		targets = append(targets, b)
	}
	return targets
}

func hasHiddenOwner(bindings []netstat.Binding) bool {
	for _, b := range bindings {
		if !b.Owned() && (b.State == "LISTEN" || b.State == "BOUND") {
			return true
		}
	}
	return false
}

// identityChanged reports whether the PID no longer matches the scanned
// process name. A PID that vanished entirely is not a change; killing it
// is a no-op success downstream.
func identityChanged(ctx context.Context, b netstat.Binding) (bool, string) {
	info, err := process.Describe(ctx, b.PID)
	if err != nil || b.Process == "" {
		return false, ""
	}
	if strings.EqualFold(info.Name, b.Process) {
		return false, ""
	}
	// lsof truncates long names; accept a prefix match.
	if strings.HasPrefix(strings.ToLower(info.Name), strings.ToLower(b.Process)) {
		return false, ""
	}
	return true, info.Name
}

func killOne(ctx context.Context, b netstat.Binding, sigName string, grace time.Duration) error {
	switch {
	case forceKill:
		if err := process.Kill(ctx, b.PID); err != nil {
			return err
		}
		fmt.Printf("Sent SIGKILL to %s (PID %d) on port %d.\n", b.Process, b.PID, b.Port)

	case sigName != "":
		sig, err := process.ParseSignal(sigName)
		if err != nil {
			return err
		}
		if err := process.Signal(ctx, b.PID, sig); err != nil {
			return err
		}
		fmt.Printf("Sent %s to %s (PID %d) on port %d.\n",
			process.SignalName(sig), b.Process, b.PID, b.Port)

	default:
		outcome, err := process.Terminate(ctx, b.PID, grace)
		if err != nil {
			return err
		}
		switch outcome {
		case process.AlreadyGone:
			fmt.Printf("Process %s (PID %d) had already exited.\n", b.Process, b.PID)
		case process.Exited:
			fmt.Printf("Process %s (PID %d) terminated gracefully.\n", b.Process, b.PID)
		case process.Forced:
			fmt.Printf("Process %s (PID %d) ignored SIGTERM; killed with SIGKILL.\n", b.Process, b.PID)
		}
	}
	return nil
}

// confirm prompts on stdin before anything gets signalled.
func confirm(targets []netstat.Binding, port int) bool {
	if len(targets) == 1 {
		t := targets[0]
		fmt.Printf("Kill %s (PID %d) on port %d? [y/N] ", t.Process, t.PID, port)
	} else {
		fmt.Printf("Kill %d processes on port %d? [y/N] ", len(targets), port)
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
