// Package cli defines the Cobra commands of the interview screener.
package cli

import (
	"fmt"
	"os"

	"interview-screener/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "interview-screener",
	Short: "Timed AI voice screening calls backed by Ultravox",
	Long: `interview-screener runs short candidate screening calls with an
Ultravox voice agent. It proxies call creation, enforces the call time
limit and relays the agent's candidate assessments to observers.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(callConfigCmd)
}
