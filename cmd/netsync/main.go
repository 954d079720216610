package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netsync-network/netsync/pkg/util"
	"github.com/netsync-network/netsync/pkg/version"
)

var (
	configFlag   string
	logLevelFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "netsync",
		Short: "Collect device state and reconcile it into NetBox",
		Long: `Netsync collects operational state from network devices over SSH,
normalizes it, and reconciles it against a NetBox inventory.

  netsync collect --devices 10.0.0.10:cisco_ios   # collect and show state
  netsync sync --dry-run                          # preview inventory changes
  netsync sync --cleanup interfaces               # apply, deleting stale interfaces
  netsync backup                                  # push running configs to git
  netsync history --stats                         # past runs`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.SetLogLevel(logLevelFlag)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", defaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newCollectCmd(),
		newSyncCmd(),
		newDiffCmd(),
		newBackupCmd(),
		newHistoryCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println("netsync " + version.Info())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := home + "/.netsync/config.yaml"
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
