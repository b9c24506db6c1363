package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/phasebus/internal/journal"
)

const passingScenario = `name: chain-phases
description: "Listeners fire phase by phase, registration order within"
event: entity/tick
phases: [early, default, late]
listeners:
  - { phase: early, label: physics }
  - { phase: late, label: render }
  - { phase: default, label: ai }
  - { phase: default, label: sound }
expect:
  phases: [early, default, late]
  firings: [physics, ai, sound, render]
`

const failingScenario = `name: chain-mismatch
description: "Expectation deliberately out of order"
event: entity/tick
phases: [early, default, late]
listeners:
  - { phase: early, label: physics }
  - { phase: late, label: render }
expect:
  firings: [render, physics]
`

// writeScenario writes content as scenario.yaml in a fresh temp directory.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(t, err)
	return path
}

func TestRunScenarioPasses(t *testing.T) {
	path := writeScenario(t, passingScenario)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ scenario chain-phases passed")
	assert.Contains(t, output, "phases: early -> default -> late")
	assert.Contains(t, output, "[1] physics in early")
	assert.Contains(t, output, "[4] render in late")
}

func TestRunScenarioFailure(t *testing.T) {
	path := writeScenario(t, failingScenario)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ scenario chain-mismatch failed")
	assert.Contains(t, output, "error: firing sequence")
}

func TestRunMissingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", "/nonexistent/scenario.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRunRejectsUnknownScenarioField(t *testing.T) {
	path := writeScenario(t, `name: typo
description: "x"
event: entity/tick
listener:
  - { phase: early, label: physics }
expect:
  firings: [physics]
`)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}

func TestRunJSON(t *testing.T) {
	path := writeScenario(t, passingScenario)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", path, "--format", "json"})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "chain-phases", resp.Data.Scenario)
	assert.Equal(t, "entity/tick", resp.Data.Event)
	require.NotNil(t, resp.Data.Result)
	assert.True(t, resp.Data.Result.Pass)
	assert.Len(t, resp.Data.Result.Firings, 4)
}

func TestRunJSONFailure(t *testing.T) {
	path := writeScenario(t, failingScenario)

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"run", path, "--format", "json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)

	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
}

func TestRunWithJournal(t *testing.T) {
	path := writeScenario(t, passingScenario)
	dbPath := filepath.Join(t.TempDir(), "dispatch.db")

	opts := &RunOptions{
		RootOptions:    &RootOptions{Format: "text"},
		Journal:        dbPath,
		TokenGenerator: journal.NewFixedGenerator("run-cli-1"),
	}

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := runScenario(opts, path, cmd)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "journaled as run run-cli-1")

	j, err := journal.Open(dbPath)
	require.NoError(t, err)
	defer j.Close()

	run, err := j.LoadRun(context.Background(), "run-cli-1")
	require.NoError(t, err)
	assert.Equal(t, "entity/tick", run.Event)
	assert.Equal(t, "chain-phases", run.Scenario)
	require.Len(t, run.Firings, 4)
	assert.Equal(t, 0, run.Firings[0].Seq)
	assert.Equal(t, "physics", run.Firings[0].Listener)
	assert.Equal(t, "early", run.Firings[0].Phase)
	assert.Equal(t, "render", run.Firings[3].Listener)
}
