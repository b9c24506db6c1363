package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGolden_ChainPhases pins the full outcome shape of the chain
// scenario, including ticks.
func TestGolden_ChainPhases(t *testing.T) {
	s := loadTestScenario(t, "chain-phases.yaml")
	require.NoError(t, RunWithGolden(t, s))
}

// TestGolden_OrderingBaseline pins the constraint-web scenario with its
// cycle warning.
func TestGolden_OrderingBaseline(t *testing.T) {
	s := loadTestScenario(t, "ordering-baseline.yaml")
	require.NoError(t, RunWithGolden(t, s))
}

// TestGolden_TwoCycles pins the double-cycle scenario with both warnings.
func TestGolden_TwoCycles(t *testing.T) {
	s := loadTestScenario(t, "two-cycles.yaml")
	require.NoError(t, RunWithGolden(t, s))
}

// TestAssertGolden_ReusesResult tests that a result computed once can be
// compared without re-running the scenario.
func TestAssertGolden_ReusesResult(t *testing.T) {
	s := loadTestScenario(t, "chain-phases.yaml")

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.NoError(t, AssertGolden(t, s.Name, result))
}
