package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/polyglot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of polyglot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "polyglot version %s\n", strings.TrimSpace(polyglot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
