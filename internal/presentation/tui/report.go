package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/fangraph/pkg/domain"
)

// NodeRow is one line of a graph report.
type NodeRow struct {
	Node   *domain.Node
	Inputs []string
	Valid  bool
}

// Report renders a graph summary as a Markdown document.
func Report(title string, rows []NodeRow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if len(rows) == 0 {
		sb.WriteString("_The graph is empty._\n")
		return sb.String()
	}

	sb.WriteString("| # | Name | Kind | Inputs | Hardware | Parameters | Status |\n")
	sb.WriteString("|---|------|------|--------|----------|------------|--------|\n")
	invalid := 0
	for _, r := range rows {
		status := "ok"
		if !r.Valid {
			status = "**invalid**"
			invalid++
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | %s |\n",
			r.Node.ID, cell(r.Node.Name), r.Node.Kind(), cell(strings.Join(r.Inputs, ", ")),
			cell(hardware(r.Node)), cell(parameters(r.Node.Type)), status)
	}
	fmt.Fprintf(&sb, "\n%d nodes, %d invalid.\n", len(rows), invalid)
	return sb.String()
}

func hardware(n *domain.Node) string {
	hb, ok := n.Type.(domain.HardwareBound)
	if !ok {
		return ""
	}
	id, h := hb.Binding()
	switch {
	case id == "":
		return "unset"
	case h == nil:
		return id + " (missing)"
	default:
		return id
	}
}

func parameters(t domain.NodeType) string {
	switch t := t.(type) {
	case *domain.Temp, *domain.Fan:
		return ""
	case *domain.Control:
		active := "inactive"
		if t.Active {
			active = "active"
		}
		return fmt.Sprintf("%s, %s", t.Mode, active)
	case *domain.Linear:
		return fmt.Sprintf("%g°C→%g%% … %g°C→%g%%", t.MinTemp, t.MinSpeed, t.MaxTemp, t.MaxSpeed)
	case *domain.Target:
		return fmt.Sprintf("idle %g°C→%g%%, load %g°C→%g%%", t.IdleTemp, t.IdleSpeed, t.LoadTemp, t.LoadSpeed)
	case *domain.Graph:
		points := make([]string, len(t.Coords))
		for i, c := range t.Coords {
			points[i] = fmt.Sprintf("%g→%g", c.Temp, c.Percent)
		}
		return strings.Join(points, " ")
	case *domain.CustomTemp:
		return string(t.Reducer)
	case *domain.Flat:
		return fmt.Sprintf("%g%%", t.Value)
	}
	panic(fmt.Sprintf("tui: unknown node type %T", t))
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
