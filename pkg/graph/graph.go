package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/fangraph/pkg/domain"
)

// Graph owns every node of a control graph, keyed by id.
// Cross references are ids only; the root set is recomputed after each structural change.
//
// Graph is not safe for concurrent use. The owner serializes edits and evaluation.
type Graph struct {
	nodes   map[domain.NodeID]*domain.Node
	roots   []domain.NodeID
	nextID  domain.NodeID
	version uint64
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:  make(map[domain.NodeID]*domain.Node),
		nextID: 1,
	}
}

// Version is bumped by every mutation.
func (g *Graph) Version() uint64 {
	return g.version
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// CreateNode returns a node of the given kind with a fresh id, default parameters and
// a default name unique in the graph. The node is not inserted.
func (g *Graph) CreateNode(kind domain.NodeKind) (*domain.Node, error) {
	typ, err := domain.NewType(kind)
	if err != nil {
		return nil, err
	}
	id := g.nextID
	g.nextID++

	return &domain.Node{
		ID:   id,
		Name: g.freeName(string(kind)),
		Type: typ,
	}, nil
}

func (g *Graph) freeName(prefix string) string {
	prefix = strings.ReplaceAll(prefix, "_", " ")
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s %d", prefix, i)
		if _, taken := g.Find(name); !taken {
			return name
		}
	}
}

// Insert adds a node. The caller guarantees the id is unused; a reused id is an invariant violation.
func (g *Graph) Insert(n *domain.Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return &domain.InvariantViolation{Op: "insert", NodeID: n.ID, Reason: "id already in use"}
	}
	if err := g.checkName(n.ID, n.Name); err != nil {
		return err
	}
	g.nodes[n.ID] = n
	if n.ID >= g.nextID {
		g.nextID = n.ID + 1
	}
	g.structureChanged()
	return nil
}

// Remove deletes a node and returns it.
// References held by other nodes are left dangling; call SanitizeInputs afterwards.
// A Control must already have been forced to Auto by the caller.
func (g *Graph) Remove(id domain.NodeID) (*domain.Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &domain.InvariantViolation{Op: "remove", NodeID: id, Reason: "unknown node"}
	}
	delete(g.nodes, id)
	g.structureChanged()
	return n, nil
}

// Get returns the node with the given id. The node must not be modified.
func (g *Graph) Get(id domain.NodeID) (*domain.Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &domain.InvariantViolation{Op: "get", NodeID: id, Reason: "unknown node"}
	}
	return n, nil
}

// GetMut returns the node for in-place mutation and marks the graph as changed.
func (g *Graph) GetMut(id domain.NodeID) (*domain.Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, &domain.InvariantViolation{Op: "get_mut", NodeID: id, Reason: "unknown node"}
	}
	g.structureChanged()
	return n, nil
}

// Find returns the node with the given name.
func (g *Graph) Find(name string) (*domain.Node, bool) {
	for _, n := range g.nodes {
		if n.Name == name {
			return n, true
		}
	}
	return nil, false
}

// Nodes returns every node sorted by id.
func (g *Graph) Nodes() []*domain.Node {
	out := make([]*domain.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *domain.Node) int { return int(a.ID) - int(b.ID) })
	return out
}

// Roots returns the ids of the nodes no other node depends on, sorted.
func (g *Graph) Roots() []domain.NodeID {
	return slices.Clone(g.roots)
}

// IsRoot reports whether no other node depends on id.
func (g *Graph) IsRoot(id domain.NodeID) bool {
	_, found := slices.BinarySearch(g.roots, id)
	return found
}

// Dependents returns the ids of the nodes taking id as input, sorted.
func (g *Graph) Dependents(id domain.NodeID) []domain.NodeID {
	var out []domain.NodeID
	for _, n := range g.nodes {
		if n.HasInput(id) {
			out = append(out, n.ID)
		}
	}
	slices.Sort(out)
	return out
}

// InputNames resolves the display names of a node inputs from the canonical nodes.
func (g *Graph) InputNames(id domain.NodeID) ([]string, error) {
	n, err := g.Get(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(n.Inputs))
	for _, in := range n.Inputs {
		if up, ok := g.nodes[in]; ok {
			names = append(names, up.Name)
		}
	}
	return names, nil
}

// Orphans returns the hardware-bound nodes whose hardware id has no live descriptor.
func (g *Graph) Orphans() []*domain.Node {
	var out []*domain.Node
	for _, n := range g.Nodes() {
		if hb, ok := n.Type.(domain.HardwareBound); ok {
			if id, h := hb.Binding(); id != "" && h == nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// Rename changes a node name. Names must be non-blank and unique; on failure nothing changes.
// Inputs reference ids only, so dependents see the new name immediately.
func (g *Graph) Rename(id domain.NodeID, name string) error {
	n, err := g.Get(id)
	if err != nil {
		return err
	}
	if err := g.checkName(id, name); err != nil {
		return err
	}
	if n.Name == name {
		return nil
	}
	n.Name = name
	g.touch()
	return nil
}

func (g *Graph) checkName(id domain.NodeID, name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Key: "name", Reason: "name cannot be empty"}
	}
	if other, taken := g.Find(name); taken && other.ID != id {
		return &domain.ValidationError{Key: "name", Reason: "name already used by another node", Value: name}
	}
	return nil
}

// touch records a parameter change.
func (g *Graph) touch() {
	g.version++
}

// structureChanged records a wiring change and recomputes the root set from scratch.
func (g *Graph) structureChanged() {
	g.version++

	depended := make(map[domain.NodeID]bool, len(g.nodes))
	for _, n := range g.nodes {
		for _, in := range n.Inputs {
			depended[in] = true
		}
	}
	g.roots = g.roots[:0]
	for id := range g.nodes {
		if !depended[id] {
			g.roots = append(g.roots, id)
		}
	}
	slices.Sort(g.roots)
}
