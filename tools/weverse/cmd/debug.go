package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// debugCmd represents the base command for debugging tools.
var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debugging tools for weverse.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, print the help message.
		return cmd.Help()
	},
}

// debugConfigCmd prints the effective configuration after defaults, the
// config file and flag overrides are merged.
var debugConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as JSON.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Copy so credentials never hit stdout.
		redacted := *cfg
		if redacted.Password != "" {
			redacted.Password = "[REDACTED]"
		}
		if redacted.Token != "" {
			redacted.Token = "[REDACTED]"
		}

		buffer, err := json.MarshalIndent(redacted, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Println(string(buffer))
		return nil
	},
}

// init initializes the debug command and its subcommands.
func init() {
	debugCmd.AddCommand(debugConfigCmd)
}
