package phasegraph

import (
	"container/heap"
	"fmt"
	"sort"
	"strings"
)

// CycleWarning describes one collapsed ordering cycle.
//
// Cycles are warnings, not errors, because they arise from independent
// parties disagreeing about ordering: no single caller made a mistake, and
// the sort still has to produce a total order. The members run in ascending
// id order at the composite's position in the final sequence.
type CycleWarning struct {
	Members []string `json:"members"` // cycle participants, ascending by id
	Message string   `json:"message"` // human-readable description
}

// Sort returns every phase exactly once in a deterministic total order,
// plus a warning per collapsed cycle.
//
// The algorithm:
//  1. Find strongly connected components with Tarjan's algorithm.
//  2. Collapse each SCC into a composite keyed by its smallest member id;
//     members inside a composite are ordered ascending by id.
//  3. Topologically sort the condensed DAG with Kahn's algorithm, breaking
//     ties between ready composites by ascending representative id.
//  4. Expand composites back into their member phases.
//
// If an edge before→after connects two distinct components, before's
// component precedes after's. The result depends only on the node and edge
// sets, never on insertion order. Sort never fails and never loops on a
// cyclic graph.
func (g *Graph) Sort() ([]string, []CycleWarning) {
	n := len(g.ids)
	if n == 0 {
		return nil, nil
	}

	sccs := g.tarjanSCC()

	// Assign nodes to components; order members ascending by id so that
	// composite expansion is independent of discovery order.
	comp := make([]int, n)
	members := make([][]int, len(sccs))
	for ci, scc := range sccs {
		sort.Slice(scc, func(i, j int) bool { return g.ids[scc[i]] < g.ids[scc[j]] })
		members[ci] = scc
		for _, v := range scc {
			comp[v] = ci
		}
	}

	var warnings []CycleWarning
	for _, scc := range members {
		if len(scc) > 1 {
			warnings = append(warnings, g.cycleWarning(scc))
		}
	}
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Members[0] < warnings[j].Members[0] })

	// Condense edges between components, dropping intra-SCC edges and
	// duplicates. The condensation of an SCC partition is always a DAG, so
	// Kahn's algorithm below drains every component.
	indegree := make([]int, len(members))
	csucc := make([][]int, len(members))
	seen := make(map[[2]int]struct{})
	for key := range g.edges {
		cb, ca := comp[key[0]], comp[key[1]]
		if cb == ca {
			continue
		}
		ck := [2]int{cb, ca}
		if _, dup := seen[ck]; dup {
			continue
		}
		seen[ck] = struct{}{}
		csucc[cb] = append(csucc[cb], ca)
		indegree[ca]++
	}

	h := &compHeap{graph: g, members: members}
	for ci := range members {
		if indegree[ci] == 0 {
			heap.Push(h, ci)
		}
	}

	order := make([]string, 0, n)
	for h.Len() > 0 {
		ci := heap.Pop(h).(int)
		for _, v := range members[ci] {
			order = append(order, g.ids[v])
		}
		for _, next := range csucc[ci] {
			indegree[next]--
			if indegree[next] == 0 {
				heap.Push(h, next)
			}
		}
	}
	return order, warnings
}

// tarjanSCC finds strongly connected components over the arena indices.
//
// Returns a list of SCCs, each a list of arena indices. Single-node SCCs
// are ordinary acyclic phases; only SCCs with more than one member are
// cycles (a self-loop cannot exist because AddEdge rejects it).
func (g *Graph) tarjanSCC() [][]int {
	var (
		next    = 0
		stack   []int
		indices = make([]int, len(g.ids))
		lowlink = make([]int, len(g.ids))
		onStack = make([]bool, len(g.ids))
		sccs    [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(int)
	strongConnect = func(v int) {
		// Set the depth index for v
		indices[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range g.succ[v] {
			if indices[w] == -1 {
				// Successor w has not yet been visited; recurse on it
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				// Successor w is on stack and hence in the current SCC
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := range g.ids {
		if indices[v] == -1 {
			strongConnect(v)
		}
	}
	return sccs
}

// cycleWarning renders one collapsed SCC as a diagnostic value.
// Members arrive in ascending id order.
func (g *Graph) cycleWarning(scc []int) CycleWarning {
	ids := make([]string, len(scc))
	for i, v := range scc {
		ids[i] = g.ids[v]
	}
	return CycleWarning{
		Members: ids,
		Message: fmt.Sprintf("Ordering cycle detected among phases: %s", strings.Join(ids, ", ")),
	}
}

// compHeap is a min-heap of component indices ordered by representative id.
// Members are kept ascending, so the representative is member 0.
type compHeap struct {
	graph   *Graph
	members [][]int
	items   []int
}

func (h *compHeap) rep(ci int) string { return h.graph.ids[h.members[ci][0]] }

func (h *compHeap) Len() int           { return len(h.items) }
func (h *compHeap) Less(i, j int) bool { return h.rep(h.items[i]) < h.rep(h.items[j]) }
func (h *compHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *compHeap) Push(x any) {
	h.items = append(h.items, x.(int))
}

func (h *compHeap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[:n-1]
	return x
}
