// Package cli wires up the portwitch command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Thegreatsura/portwitch/internal/config"
	"github.com/Thegreatsura/portwitch/internal/tui"
)

var (
	// Set via ldflags at build time.
	version = "dev"

	// Global flags.
	jsonOutput bool
	protoFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "portwitch [filter]",
	Short: "Find and kill the process hogging a port",
	Long: `portwitch shows which processes are listening on which ports and can
terminate them. Run without a subcommand for an interactive live table;
any arguments become the initial filter, e.g.:

  portwitch 8080`,
	Version: version,
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if shell, _ := cmd.Flags().GetString("generate-completion"); shell != "" {
			switch shell {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			default:
				return fmt.Errorf("unsupported shell: %s (use bash, zsh, or fish)", shell)
			}
		}

		cfg, err := config.Load("")
		if err != nil {
			return err
		}

		p := tea.NewProgram(tui.New(cfg, version, strings.Join(args, " ")), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("portwitch %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.Flags().String("generate-completion", "", "Generate shell completion (bash, zsh, fish)")
	rootCmd.Flags().MarkHidden("generate-completion")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&protoFlag, "protocol", "", "Restrict to a protocol (tcp or udp)")

	rootCmd.AddCommand(whoCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(listCmd)
}
