package phasegraph

import "fmt"

// SelfConstraintError reports an ordering constraint whose two endpoints are
// the same phase. Such a constraint is unsatisfiable and always a caller
// mistake, so it is the one graph operation that fails.
type SelfConstraintError struct {
	Phase string
}

func (e *SelfConstraintError) Error() string {
	return fmt.Sprintf("phase %q cannot be ordered before itself", e.Phase)
}

// Graph is a directed phase-ordering graph.
//
// Nodes are phase ids, edges mean "must run before". Mutation is
// append-only: phases and edges are added, never removed. Graph is not
// safe for concurrent use; the owning event serializes access.
type Graph struct {
	ids   []string            // arena: index → phase id, insertion order
	index map[string]int      // phase id → arena index
	succ  [][]int             // succ[i] = indices phase i must run before
	edges map[[2]int]struct{} // edge set for duplicate collapse
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		edges: make(map[[2]int]struct{}),
	}
}

// AddPhase creates the node for id if absent. Adding a phase twice is a
// no-op.
func (g *Graph) AddPhase(id string) {
	g.intern(id)
}

// AddEdge records that before must run earlier than after whenever both
// appear in the final order. Both endpoints are created if absent, and
// duplicate edges collapse into one.
//
// A self-referential edge (before == after) returns *SelfConstraintError
// and leaves the graph unchanged.
func (g *Graph) AddEdge(before, after string) error {
	if before == after {
		return &SelfConstraintError{Phase: before}
	}

	b := g.intern(before)
	a := g.intern(after)

	key := [2]int{b, a}
	if _, dup := g.edges[key]; dup {
		return nil
	}
	g.edges[key] = struct{}{}
	g.succ[b] = append(g.succ[b], a)
	return nil
}

// HasPhase reports whether id has been added to the graph.
func (g *Graph) HasPhase(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Len returns the number of phases in the graph.
func (g *Graph) Len() int {
	return len(g.ids)
}

// Phases returns every phase id in insertion order.
// Used for testing and introspection.
func (g *Graph) Phases() []string {
	out := make([]string, len(g.ids))
	copy(out, g.ids)
	return out
}

// intern returns the arena index for id, allocating a node on first sight.
func (g *Graph) intern(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	i := len(g.ids)
	g.ids = append(g.ids, id)
	g.index[id] = i
	g.succ = append(g.succ, nil)
	return i
}
