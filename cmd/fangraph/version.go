package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fangraph"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fangraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fangraph version %s\n", strings.TrimSpace(fangraph.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
