package main

import (
	"fmt"

	"github.com/aretw0/fangraph/internal/presentation/graph"
	"github.com/aretw0/fangraph/internal/runtime"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [config]",
	Short: "Export the graph visualization",
	Long:  `Outputs a Mermaid diagram (graph LR) of a config, with invalid nodes highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := loadGraph(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}

		overlay := &graph.GraphOverlay{Invalid: map[domain.NodeID]bool{}}
		for _, n := range g.Nodes() {
			if !runtime.IsValid(g, n.ID) {
				overlay.Invalid[n.ID] = true
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g.Nodes(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addGraphFlags(graphCmd)
}
