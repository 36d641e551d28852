package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/promptdrafter"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of promptdrafter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "promptdrafter version %s\n", strings.TrimSpace(promptdrafter.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
