package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/phasebus"
	"github.com/roach88/phasebus/internal/manifest"
	"github.com/roach88/phasebus/internal/testutil"
)

// Run executes a scenario and returns the result.
//
// The scenario's event is built fresh, listeners are registered in
// declaration order, constraints are applied, and the combined invoker
// fires once. The result carries the resolved phase order, the recorded
// firings, and any cycle warnings, with mismatches against the expect
// clause collected as errors.
//
// With PermuteConstraints set, the scenario reruns under every insertion
// order of its constraint set; any divergence from the first run's
// output fails the result.
func Run(scenario *Scenario) (*Result, error) {
	result, err := runOnce(scenario, scenario.Constraints)
	if err != nil {
		return nil, err
	}
	checkExpect(result, scenario.Expect)

	if scenario.PermuteConstraints && len(scenario.Constraints) > 1 {
		var permErr error
		diverged := false
		testutil.Permutations(scenario.Constraints, func(perm []Constraint) {
			if permErr != nil || diverged {
				return
			}
			rerun, err := runOnce(scenario, perm)
			if err != nil {
				permErr = err
				return
			}
			if !slices.Equal(rerun.Phases, result.Phases) {
				result.AddError(fmt.Sprintf(
					"constraint order %v changed phase order: %v != %v",
					perm, rerun.Phases, result.Phases))
				diverged = true
				return
			}
			if !slices.Equal(rerun.Firings, result.Firings) {
				result.AddError(fmt.Sprintf(
					"constraint order %v changed firing sequence: %v != %v",
					perm, rerun.Firings, result.Firings))
				diverged = true
			}
		})
		if permErr != nil {
			return nil, permErr
		}
	}

	return result, nil
}

// runOnce builds the scenario's event, fires it, and captures the outcome
// for one constraint insertion order.
func runOnce(scenario *Scenario, constraints []Constraint) (*Result, error) {
	// The live event only surfaces cycles through its logger, so resolve
	// warnings separately through the equivalent declaration graph.
	decl := manifest.EventDecl{Name: scenario.Event, Phases: scenario.Phases}
	for _, c := range constraints {
		decl.Constraints = append(decl.Constraints, manifest.Constraint{
			Before: c.Before,
			After:  c.After,
		})
	}
	graph, err := decl.Graph()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	if len(scenario.Phases) == 0 {
		graph.AddPhase(string(phasebus.DefaultPhase))
	}
	for _, l := range scenario.Listeners {
		graph.AddPhase(l.Phase)
	}
	_, cycles := graph.Sort()

	rec := NewRecorder()
	quiet := phasebus.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var ev *phasebus.Event[func()]
	if len(scenario.Phases) > 0 {
		ids := make([]phasebus.ID, len(scenario.Phases))
		for i, p := range scenario.Phases {
			ids[i] = phasebus.ID(p)
		}
		ev = phasebus.NewWithPhases(chainFactory, ids, quiet)
	} else {
		ev = phasebus.New(chainFactory, quiet)
	}

	for _, l := range scenario.Listeners {
		ev.RegisterIn(phasebus.ID(l.Phase), rec.Listener(l.Phase, l.Label))
	}
	for _, c := range constraints {
		if err := ev.AddPhaseOrdering(phasebus.ID(c.Before), phasebus.ID(c.After)); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
	}

	ev.Invoker()()

	result := NewResult()
	for _, p := range ev.PhaseOrder() {
		result.Phases = append(result.Phases, string(p))
	}
	result.Firings = rec.Firings()
	for _, w := range cycles {
		result.Warnings = append(result.Warnings, w.Message)
	}
	return result, nil
}

// checkExpect compares the outcome against the expect clause, collecting
// mismatches as result errors.
func checkExpect(result *Result, expect ExpectClause) {
	if len(expect.Phases) > 0 && !slices.Equal(result.Phases, expect.Phases) {
		result.AddError(fmt.Sprintf("phase order = %v, want %v", result.Phases, expect.Phases))
	}
	if len(expect.Firings) > 0 {
		got := labels(result.Firings)
		if !slices.Equal(got, expect.Firings) {
			result.AddError(fmt.Sprintf("firing sequence = %v, want %v", got, expect.Firings))
		}
	}
}

// labels extracts listener labels in firing order.
func labels(firings []Firing) []string {
	out := make([]string, len(firings))
	for i, f := range firings {
		out[i] = f.Listener
	}
	return out
}

// chainFactory combines niladic listeners into one invoker that calls
// them in order.
func chainFactory(listeners []func()) func() {
	return func() {
		for _, l := range listeners {
			l()
		}
	}
}
