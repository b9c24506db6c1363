// Package harness executes dispatch scenarios against a live event.
//
// A scenario declares an event's phases, ordering constraints, and
// labeled listeners, then states the expected phase order and firing
// sequence. The harness builds the event, fires it once through its
// combined invoker, and checks the outcome. With permute_constraints
// set, the scenario replays under every insertion order of its
// constraint set and must produce identical output each time.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	event: entity/tick
//	phases: [early, default, late]
//	constraints:
//	  - { before: physics, after: default }
//	listeners:
//	  - { phase: early, label: physics }
//	  - { phase: late, label: render }
//	expect:
//	  phases: [early, default, late]
//	  firings: [physics, render]
//	permute_constraints: true
//
// The phases list is optional. When present it seeds the event as an
// ordered chain; when absent the event starts with only the default
// phase and grows as listeners and constraints name new phases.
//
// # Golden Files
//
// RunWithGolden additionally snapshots the outcome as JSON and compares
// it against testdata/golden/{name}.golden, so a scenario's full result
// shape is pinned, not just the fields its expect clause names.
package harness
