package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ScenarioSnapshot is the stable JSON shape compared against golden files.
type ScenarioSnapshot struct {
	ScenarioName string   `json:"scenario_name"`
	Phases       []string `json:"phases"`
	Firings      []Firing `json:"firings"`
	Warnings     []string `json:"warnings,omitempty"`
}

// RunWithGolden executes a scenario and compares the outcome against a
// golden file. The golden file is stored in
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails. Test failure (via
// goldie) occurs if the outcome doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-computed result against a golden file.
// Useful when a test has run a scenario itself and wants the outcome
// pinned without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := ScenarioSnapshot{
		ScenarioName: scenarioName,
		Phases:       result.Phases,
		Firings:      result.Firings,
		Warnings:     result.Warnings,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
