// Package phasegraph implements the ordering core of phasebus.
//
// A Graph holds phases as nodes with directed must-run-before edges and
// produces one deterministic total order over them, tolerating cycles.
//
// ARCHITECTURE:
//
// Arena representation:
// Phase ids are interned into a dense integer arena (index per id, adjacency
// as index slices). No pointer-linked nodes, no hidden traversal state; the
// whole structure is cheap to copy and inspect in tests.
//
// Sort pipeline:
//  1. Tarjan's algorithm finds strongly connected components.
//  2. Each SCC collapses into a composite node keyed by its smallest member
//     id; members inside a composite stay in ascending id order.
//  3. Kahn's algorithm topologically sorts the condensed DAG; ties between
//     ready composites break by ascending representative id.
//  4. Composites expand back into member phases.
//
// Determinism:
// The output is a pure function of the node and edge sets. Insertion order
// never leaks into the result: composites order members by id, the ready
// heap breaks ties by id, and edges deduplicate as a set.
//
// Cycles:
// A cycle is a diagnostic, never a failure. Each SCC with more than one
// member is reported as a CycleWarning and collapsed; Sort always
// terminates with every phase exactly once. Only a self-referential edge
// is an error, rejected at AddEdge time.
package phasegraph
