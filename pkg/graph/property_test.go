package graph_test

import (
	"slices"
	"testing"

	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/aretw0/fangraph/pkg/graph"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// wireOp is one random wiring or structural edit.
type wireOp struct {
	Action int
	From   int
	To     int
}

func genWireOp() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 4),
		gen.IntRange(0, 11),
		gen.IntRange(0, 11),
	).Map(func(v []any) wireOp {
		return wireOp{Action: v[0].(int), From: v[1].(int), To: v[2].(int)}
	})
}

// pool builds one node of every kind, plus spares for the multi-input kinds.
func pool() (*graph.Graph, []domain.NodeID) {
	g := graph.New()
	kinds := []domain.NodeKind{
		domain.KindTemp, domain.KindTemp, domain.KindFan, domain.KindCustomTemp,
		domain.KindLinear, domain.KindTarget, domain.KindGraph, domain.KindFlat,
		domain.KindControl, domain.KindControl, domain.KindCustomTemp, domain.KindTemp,
	}
	ids := make([]domain.NodeID, 0, len(kinds))
	for _, k := range kinds {
		n, _ := g.CreateNode(k)
		_ = g.Insert(n)
		ids = append(ids, n.ID)
	}
	return g, ids
}

// invariantsHold checks the graph invariants that every edit must preserve.
func invariantsHold(g *graph.Graph) bool {
	depended := map[domain.NodeID]bool{}
	for _, n := range g.Nodes() {
		limit := n.Kind().MaxInputs()
		if limit != domain.Unbounded && len(n.Inputs) > limit {
			return false
		}
		seen := map[domain.NodeID]bool{}
		for _, in := range n.Inputs {
			up, err := g.Get(in)
			if err != nil || in == n.ID || seen[in] || !n.Kind().Accepts(up.Kind()) {
				return false
			}
			seen[in] = true
			depended[in] = true
		}
	}
	var roots []domain.NodeID
	for _, n := range g.Nodes() {
		if !depended[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	return slices.Equal(roots, g.Roots()) && len(g.Order()) == g.Len()
}

// TestWiring_Properties applies arbitrary sequences of edits, rejected or not,
// and verifies the graph never leaves its invariants.
func TestWiring_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("edits preserve graph invariants", prop.ForAll(
		func(ops []wireOp) bool {
			g, ids := pool()
			for _, op := range ops {
				from, to := ids[op.From], ids[op.To]
				switch op.Action {
				case 0:
					_ = g.AddInput(from, to)
				case 1:
					_ = g.ReplaceInput(from, &to)
				case 2:
					_ = g.RemoveInput(from, to)
				case 3:
					_, _ = g.Remove(to)
					g.SanitizeInputs(true)
				case 4:
					_ = g.ReplaceInput(from, nil)
				}
				if !invariantsHold(g) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genWireOp()),
	))

	properties.TestingRun(t)
}
