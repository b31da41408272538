package main

import (
	"github.com/aretw0/fangraph/internal/presentation/tui"
	"github.com/aretw0/fangraph/internal/runtime"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [config]",
	Short: "Summarize the nodes of a config",
	Long:  `Prints a table of every node with its wiring, hardware binding, parameters and validity.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, title, err := loadGraph(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}

		var rows []tui.NodeRow
		for _, n := range g.Nodes() {
			names, err := g.InputNames(n.ID)
			if err != nil {
				return err
			}
			rows = append(rows, tui.NodeRow{Node: n, Inputs: names, Valid: runtime.IsValid(g, n.ID)})
		}
		return tui.Print(cmd.OutOrStdout(), tui.Report(title, rows))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addGraphFlags(inspectCmd)
}
