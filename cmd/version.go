package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ensa-hoceima/hr-assistant/internal/ai/providers"
)

// Actual version can be specified in build command.
var version = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the supported ai providers",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
		fmt.Fprintf(cmd.OutOrStdout(), "ai providers: %s\n", strings.Join(providers.Tags(), ", "))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
