package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Thegreatsura/portwitch/internal/config"
	"github.com/Thegreatsura/portwitch/internal/netstat"
)

var (
	listAll    bool
	filterProc string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List ports in use",
	Long:  "Display a table of ports currently held by processes.",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include established connections, not just listeners")
	listCmd.Flags().StringVar(&filterProc, "process", "", "Filter by process name")
}

func runList(cmd *cobra.Command, args []string) error {
	proto, err := netstat.ParseProtocol(protoFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	bindings, err := netstat.Snapshot(context.Background())
	if err != nil {
		return fmt.Errorf("failed to scan ports: %w", err)
	}

	bindings = filterBindings(bindings, cfg, proto)

	if jsonOutput {
		return printBindingsJSON(bindings)
	}
	if len(bindings) == 0 {
		fmt.Println("No ports in use matching the filter.")
		return nil
	}
	return printBindingsTable(bindings)
}

func filterBindings(bindings []netstat.Binding, cfg *config.Config, proto netstat.Protocol) []netstat.Binding {
	var out []netstat.Binding
	for _, b := range bindings {
		if !listAll && b.State != "LISTEN" && b.State != "BOUND" {
			continue
		}
		if proto != "" && b.Protocol != proto {
			continue
		}
		if filterProc != "" && !strings.Contains(strings.ToLower(b.Process), strings.ToLower(filterProc)) {
			continue
		}
		if cfg.Excluded(b.Process) {
			continue
		}
		out = append(out, b)
	}
	return out
}
