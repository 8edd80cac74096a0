package cli

import (
	"fmt"

	"github.com/rileyhilliard/countertop/internal/errors"
	"github.com/spf13/cobra"
)

// Command-specific flags
var (
	watchListenFlag      string
	watchMetricsAddrFlag string
	watchIntervalFlag    string
	checkPreview         bool
	initForce            bool
	initSSHFlag          string
)

// watchCmd draws the live table
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the live counter table",
	Long: `Draw the counter table once, then rewrite cells in place as events arrive.

Host sources in the config are polled on the interval. Push events are read
as newline-delimited JSON from the listener, and from stdin when stdin is
not a terminal.

Examples:
  countertop watch
  countertop watch --listen 127.0.0.1:7070
  countertop watch --listen unix:/tmp/countertop.sock
  my-app --emit-counters | countertop watch
  countertop watch --metrics-addr 127.0.0.1:9464 --interval 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchCommand(WatchOptions{
			Listen:      watchListenFlag,
			MetricsAddr: watchMetricsAddrFlag,
			Interval:    watchIntervalFlag,
		})
	},
}

// checkCmd validates the config and shows what the table will look like
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate config and preview the table",
	Long: `Load and validate the config, then list the visible columns and the
counters each source contributes.

Examples:
  countertop check
  countertop check --preview
  countertop check --config ./other.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(cmd.OutOrStdout(), checkPreview)
	},
}

// initCmd writes a starter countertop.yaml
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create countertop.yaml configuration",
	Long: `Write a starter countertop.yaml in the current directory.

The starter config watches this machine's CPU, load, memory and network.
With --ssh, or by picking a host from ~/.ssh/config, a second host source
polls a remote machine over SSH.

Examples:
  countertop init
  countertop init --ssh gpu-box
  countertop init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(InitOptions{
			SSH:            initSSHFlag,
			Overwrite:      initForce,
			NonInteractive: !isInteractive(),
		})
	},
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for countertop.

Bash:
  $ source <(countertop completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ countertop completion bash > /etc/bash_completion.d/countertop
  # macOS:
  $ countertop completion bash > $(brew --prefix)/etc/bash_completion.d/countertop

Zsh:
  $ countertop completion zsh > "${fpath[1]}/_countertop"

Fish:
  $ countertop completion fish > ~/.config/fish/completions/countertop.fish

PowerShell:
  PS> countertop completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown shell: %s", args[0]),
			"Supported shells: bash, zsh, fish, powershell")
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchListenFlag, "listen", "", "accept events on host:port or unix:/path (overrides config)")
	watchCmd.Flags().StringVar(&watchMetricsAddrFlag, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")
	watchCmd.Flags().StringVar(&watchIntervalFlag, "interval", "", "host source poll interval, e.g. 500ms or 2s (overrides config)")

	checkCmd.Flags().BoolVar(&checkPreview, "preview", false, "draw the table as it will first appear")

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config without asking")
	initCmd.Flags().StringVar(&initSSHFlag, "ssh", "", "also poll this ssh alias or user@host")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
}

