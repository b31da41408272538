package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/fangraph/pkg/adapters/file"
	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
	"github.com/spf13/cobra"
)

// addGraphFlags registers the flags of the commands that load a graph without driving it.
func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "Read the config from this file instead of the store")
	cmd.Flags().String("hardware", "", "Hardware file used to resolve hardware ids")
}

// loadGraph builds the graph of the named config, the --file config, or the current config.
// It returns the graph and a title for it.
func loadGraph(ctx context.Context, cmd *cobra.Command, args []string) (*graph.Graph, string, error) {
	path, _ := cmd.Flags().GetString("file")
	hardwarePath, _ := cmd.Flags().GetString("hardware")

	var (
		cfg   *config.Config
		title string
	)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		if cfg, err = config.Decode(data, config.FormatFromPath(path)); err != nil {
			return nil, "", fmt.Errorf("%s: %w", path, err)
		}
		title = path
	} else {
		st := openStores(cmd)
		defer st.Close()

		name := ""
		if len(args) > 0 {
			name = args[0]
		} else {
			s, err := st.settings.LoadSettings(ctx)
			if err != nil {
				return nil, "", err
			}
			name = s.CurrentConfig
		}
		if name == "" {
			return nil, "", fmt.Errorf("no config given and no current config")
		}

		var err error
		if cfg, err = st.configs.Load(ctx, name); err != nil {
			return nil, "", fmt.Errorf("config %q: %w", name, err)
		}
		title = name
	}

	inv := &domain.Inventory{}
	if hardwarePath != "" {
		doc, err := file.ReadHardware(hardwarePath)
		if err != nil {
			return nil, "", err
		}
		inv = &doc.Inventory
	}

	g := graph.New()
	if err := g.ApplyConfig(cfg, inv); err != nil {
		return nil, "", err
	}
	return g, title, nil
}
