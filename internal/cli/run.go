package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/phasebus/internal/harness"
	"github.com/roach88/phasebus/internal/journal"
)

// Run error codes, continuing the manifest code space.
const (
	// ErrCodeScenarioFailed marks a scenario whose outcome missed its
	// expectations.
	ErrCodeScenarioFailed = "E201"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Journal string

	// TokenGenerator allows overriding the run token source (for testing).
	// If nil, defaults to UUIDv7Generator.
	TokenGenerator journal.TokenGenerator
}

// RunReport is the run command's output payload.
type RunReport struct {
	Scenario string          `json:"scenario"`
	Event    string          `json:"event"`
	RunToken string          `json:"run_token,omitempty"`
	Result   *harness.Result `json:"result"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a dispatch scenario",
		Long: `Run a dispatch scenario against a live event.

The scenario's event is built from its declared phases, constraints,
and listeners, fired once through its combined invoker, and checked
against the expected phase order and firing sequence.

With --journal the observed run is recorded to a SQLite journal under
a fresh run token, for later inspection with the trace command.

Examples:
  phasebus run ./scenarios/tick.yaml
  phasebus run ./scenarios/tick.yaml --journal ./dispatch.db
  phasebus run ./scenarios/tick.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal database")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	logger.Debug("scenario loaded", "name", scenario.Name, "event", scenario.Event)

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	report := RunReport{
		Scenario: scenario.Name,
		Event:    scenario.Event,
		Result:   result,
	}

	if opts.Journal != "" {
		token, err := journalRun(cmd.Context(), opts, scenario, result)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to journal run", err)
		}
		report.RunToken = token
		logger.Info("run journaled", "token", token, "event", scenario.Event)
	}

	if opts.Format == "json" {
		return outputRunJSON(cmd, report)
	}

	return outputRunText(cmd, report)
}

// journalRun records the observed firings under a fresh run token.
func journalRun(ctx context.Context, opts *RunOptions, scenario *harness.Scenario, result *harness.Result) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	gen := opts.TokenGenerator
	if gen == nil {
		gen = journal.UUIDv7Generator{}
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		return "", err
	}
	defer j.Close()

	run := journal.Run{
		Token:    gen.Generate(),
		Event:    scenario.Event,
		Scenario: scenario.Name,
	}
	for i, f := range result.Firings {
		run.Firings = append(run.Firings, journal.Firing{
			Seq:      i,
			Phase:    f.Phase,
			Listener: f.Listener,
			Tick:     f.Tick,
		})
	}

	if err := j.RecordRun(ctx, run); err != nil {
		return "", err
	}

	return run.Token, nil
}

// outputRunJSON outputs the run report as JSON.
func outputRunJSON(cmd *cobra.Command, report RunReport) error {
	response := CLIResponse{
		Status:   "ok",
		Data:     report,
		RunToken: report.RunToken,
	}
	if !report.Result.Pass {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("scenario failed with %d mismatch(es)", len(report.Result.Errors)),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !report.Result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", report.Scenario))
	}
	return nil
}

// outputRunText outputs the run report as text.
func outputRunText(cmd *cobra.Command, report RunReport) error {
	w := cmd.OutOrStdout()
	result := report.Result

	if result.Pass {
		fmt.Fprintf(w, "✓ scenario %s passed\n", report.Scenario)
	} else {
		fmt.Fprintf(w, "✗ scenario %s failed\n", report.Scenario)
	}

	fmt.Fprintf(w, "phases: %s\n", strings.Join(result.Phases, " -> "))
	fmt.Fprintln(w, "firings:")
	for _, f := range result.Firings {
		fmt.Fprintf(w, "  [%d] %s in %s\n", f.Tick, f.Listener, f.Phase)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "error: %s\n", msg)
	}
	if report.RunToken != "" {
		fmt.Fprintf(w, "journaled as run %s\n", report.RunToken)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", report.Scenario))
	}
	return nil
}
