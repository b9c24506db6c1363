// Package manifest loads declarative phase-ordering manifests.
//
// A manifest is a CUE document declaring, per event, the baseline phase
// chain and the ordering constraints an application wires at startup:
//
//	events: {
//		"entity/tick": {
//			phases: ["early", "default", "late"]
//			constraints: [
//				{before: "physics", after: "default"},
//			]
//		}
//	}
//
// Loading validates shape with stable E-code diagnostics. Ordering cycles
// are deliberately not load errors: the dispatcher tolerates them, and
// lint surfaces them as warnings by running the sort.
package manifest

import (
	"github.com/roach88/phasebus"
	"github.com/roach88/phasebus/internal/phasegraph"
)

// Constraint is one declared before/after pair.
type Constraint struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// EventDecl declares one event's baseline phase chain and constraints.
type EventDecl struct {
	Name        string       `json:"-"`
	Phases      []string     `json:"phases"`
	Constraints []Constraint `json:"constraints"`
}

// Manifest is a loaded ordering declaration set, events in source order.
type Manifest struct {
	Events []EventDecl
}

// Event returns the declaration named name.
func (m *Manifest) Event(name string) (EventDecl, bool) {
	for _, decl := range m.Events {
		if decl.Name == name {
			return decl, true
		}
	}
	return EventDecl{}, false
}

// Graph materializes the declaration as a phase graph: chain edges between
// successive baseline phases, then the explicit constraints.
func (d EventDecl) Graph() (*phasegraph.Graph, error) {
	g := phasegraph.New()
	for i, id := range d.Phases {
		g.AddPhase(id)
		if i > 0 {
			if err := g.AddEdge(d.Phases[i-1], id); err != nil {
				return nil, err
			}
		}
	}
	for _, c := range d.Constraints {
		if err := g.AddEdge(c.Before, c.After); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Resolve sorts the declared graph into its final phase order.
func (d EventDecl) Resolve() ([]string, []phasegraph.CycleWarning, error) {
	g, err := d.Graph()
	if err != nil {
		return nil, nil, err
	}
	order, warnings := g.Sort()
	return order, warnings, nil
}

// Apply replays the declaration onto a live event: chain constraints
// between successive baseline phases, then the explicit constraints.
// Phases materialize in the event when a constraint references them or a
// listener registers into them; a one-phase chain therefore adds nothing.
func Apply[T any](d EventDecl, ev *phasebus.Event[T]) error {
	for i := 1; i < len(d.Phases); i++ {
		if err := ev.AddPhaseOrdering(phasebus.ID(d.Phases[i-1]), phasebus.ID(d.Phases[i])); err != nil {
			return err
		}
	}
	for _, c := range d.Constraints {
		if err := ev.AddPhaseOrdering(phasebus.ID(c.Before), phasebus.ID(c.After)); err != nil {
			return err
		}
	}
	return nil
}
