package graph

import (
	"cmp"
	"slices"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
)

// ApplyConfig replaces every node with the definitions of cfg.
//
// cfg is validated first and the graph is left untouched on failure. Hardware ids are
// resolved against inv; an id with no live descriptor leaves the node orphaned with an
// empty handle. Inputs are wired by name, then sanitized strictly.
// Node ids keep counting from the previous graph so stale ids never alias new nodes.
func (g *Graph) ApplyConfig(cfg *config.Config, inv *domain.Inventory) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	nodes := make(map[domain.NodeID]*domain.Node, cfg.Len())
	byName := make(map[string]domain.NodeID, cfg.Len())
	pending := make(map[domain.NodeID][]string, cfg.Len())

	add := func(name string, typ domain.NodeType, inputs ...string) {
		n := &domain.Node{ID: g.nextID, Name: name, Type: typ}
		g.nextID++
		nodes[n.ID] = n
		byName[name] = n.ID
		pending[n.ID] = inputs
	}
	bind := func(typ domain.HardwareBound, hardwareID string) domain.HardwareBound {
		kind, _ := typ.Kind().HardwareKind()
		typ.Bind(hardwareID, inv.Lookup(kind, hardwareID))
		return typ
	}
	single := func(in string) []string {
		if in == "" {
			return nil
		}
		return []string{in}
	}

	for _, c := range cfg.Controls {
		mode, _ := domain.ParseMode(c.Mode) // checked by Validate
		ctl := &domain.Control{Mode: mode, Active: c.Active}
		add(c.Name, bind(ctl, c.HardwareID), single(c.Input)...)
	}
	for _, f := range cfg.Fans {
		add(f.Name, bind(&domain.Fan{}, f.HardwareID))
	}
	for _, t := range cfg.Temps {
		add(t.Name, bind(&domain.Temp{}, t.HardwareID))
	}
	for _, ct := range cfg.CustomTemps {
		add(ct.Name, &domain.CustomTemp{Reducer: domain.CustomTempKind(ct.Kind)}, ct.Inputs...)
	}
	for _, gr := range cfg.Graphs {
		coords := slices.Clone(gr.Coords)
		slices.SortFunc(coords, func(a, b domain.Coord) int { return cmp.Compare(a.Temp, b.Temp) })
		add(gr.Name, &domain.Graph{Coords: coords}, single(gr.Input)...)
	}
	for _, f := range cfg.Flats {
		add(f.Name, &domain.Flat{Value: f.Value})
	}
	for _, l := range cfg.Linears {
		add(l.Name, &domain.Linear{MinTemp: l.MinTemp, MinSpeed: l.MinSpeed, MaxTemp: l.MaxTemp, MaxSpeed: l.MaxSpeed}, single(l.Input)...)
	}
	for _, t := range cfg.Targets {
		add(t.Name, &domain.Target{IdleTemp: t.IdleTemp, IdleSpeed: t.IdleSpeed, LoadTemp: t.LoadTemp, LoadSpeed: t.LoadSpeed}, single(t.Input)...)
	}

	for id, names := range pending {
		for _, name := range names {
			if in, ok := byName[name]; ok {
				nodes[id].Inputs = append(nodes[id].Inputs, in)
			}
		}
	}

	g.nodes = nodes
	g.structureChanged()
	g.SanitizeInputs(true)
	return nil
}

// ExportConfig projects the graph back onto a Config. Values and resolved handles are dropped.
func (g *Graph) ExportConfig() *config.Config {
	cfg := &config.Config{}
	input := func(n *domain.Node) string {
		if len(n.Inputs) == 0 {
			return ""
		}
		if up, ok := g.nodes[n.Inputs[0]]; ok {
			return up.Name
		}
		return ""
	}

	for _, n := range g.Nodes() {
		switch t := n.Type.(type) {
		case *domain.Control:
			cfg.Controls = append(cfg.Controls, config.Control{
				Name:       n.Name,
				HardwareID: t.HardwareID,
				Input:      input(n),
				Mode:       t.Mode.String(),
				Active:     t.Active,
			})
		case *domain.Fan:
			cfg.Fans = append(cfg.Fans, config.Fan{Name: n.Name, HardwareID: t.HardwareID})
		case *domain.Temp:
			cfg.Temps = append(cfg.Temps, config.Temp{Name: n.Name, HardwareID: t.HardwareID})
		case *domain.CustomTemp:
			names, _ := g.InputNames(n.ID)
			if len(names) == 0 {
				names = nil
			}
			cfg.CustomTemps = append(cfg.CustomTemps, config.CustomTemp{Name: n.Name, Kind: string(t.Reducer), Inputs: names})
		case *domain.Graph:
			cfg.Graphs = append(cfg.Graphs, config.Graph{Name: n.Name, Coords: slices.Clone(t.Coords), Input: input(n)})
		case *domain.Flat:
			cfg.Flats = append(cfg.Flats, config.Flat{Name: n.Name, Value: t.Value})
		case *domain.Linear:
			cfg.Linears = append(cfg.Linears, config.Linear{
				Name: n.Name, MinTemp: t.MinTemp, MinSpeed: t.MinSpeed, MaxTemp: t.MaxTemp, MaxSpeed: t.MaxSpeed, Input: input(n),
			})
		case *domain.Target:
			cfg.Targets = append(cfg.Targets, config.Target{
				Name: n.Name, IdleTemp: t.IdleTemp, IdleSpeed: t.IdleSpeed, LoadTemp: t.LoadTemp, LoadSpeed: t.LoadSpeed, Input: input(n),
			})
		default:
			panic("graph: unknown node type in export")
		}
	}
	return cfg
}
