package graph

import (
	"container/heap"
	"slices"

	"github.com/aretw0/fangraph/pkg/domain"
)

type idMinHeap []domain.NodeID

func (h idMinHeap) Len() int           { return len(h) }
func (h idMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idMinHeap) Push(x any)        { *h = append(*h, x.(domain.NodeID)) }
func (h *idMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Order returns a leaves-first topological order of the node ids.
//
// Determinism: the ready queue is a min-heap by id. Nodes on a cycle, and nodes
// downstream of one, are left out; a strictly sanitized graph has none.
func (g *Graph) Order() []domain.NodeID {
	indeg := make(map[domain.NodeID]int, len(g.nodes))
	outgoing := make(map[domain.NodeID][]domain.NodeID, len(g.nodes))
	for id, n := range g.nodes {
		for _, in := range n.Inputs {
			if _, ok := g.nodes[in]; !ok {
				continue
			}
			indeg[id]++
			outgoing[in] = append(outgoing[in], id)
		}
	}

	ready := &idMinHeap{}
	for id := range g.nodes {
		if indeg[id] == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	out := make([]domain.NodeID, 0, len(g.nodes))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(domain.NodeID)
		out = append(out, n)
		for _, m := range outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// SanitizeInputs drops the input references that break the graph invariants:
// missing nodes, disallowed kinds, self references, duplicates and references beyond
// the arity limit. In strict mode references closing a cycle are dropped as well,
// found by a DFS in ascending id order.
// It returns the number of dropped references.
func (g *Graph) SanitizeInputs(strict bool) int {
	dropped := 0
	nodes := g.Nodes()

	for _, n := range nodes {
		limit := n.Kind().MaxInputs()
		kept := n.Inputs[:0]
		for _, in := range n.Inputs {
			up, ok := g.nodes[in]
			switch {
			case !ok,
				in == n.ID,
				!n.Kind().Accepts(up.Kind()),
				slices.Contains(kept, in),
				limit != domain.Unbounded && len(kept) >= limit:
				dropped++
				continue
			}
			kept = append(kept, in)
		}
		n.Inputs = kept
	}

	if strict {
		dropped += g.breakCycles(nodes)
	}

	if dropped > 0 {
		g.structureChanged()
	}
	return dropped
}

func (g *Graph) breakCycles(nodes []*domain.Node) int {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[domain.NodeID]int, len(nodes))
	dropped := 0

	var dfs func(n *domain.Node)
	dfs = func(n *domain.Node) {
		color[n.ID] = gray
		kept := n.Inputs[:0]
		for _, in := range n.Inputs {
			switch color[in] {
			case gray:
				// Back edge.
				dropped++
				continue
			case white:
				dfs(g.nodes[in])
			}
			kept = append(kept, in)
		}
		n.Inputs = kept
		color[n.ID] = black
	}

	for _, n := range nodes {
		if color[n.ID] == white {
			dfs(n)
		}
	}
	return dropped
}
