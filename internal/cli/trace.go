package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/phasebus/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunToken string
	Event    string
}

// TraceResult holds the trace output for one journaled run.
type TraceResult struct {
	Run      string           `json:"run"`
	Event    string           `json:"event"`
	Scenario string           `json:"scenario,omitempty"`
	Firings  []journal.Firing `json:"firings"`
	Stats    TraceStats       `json:"stats"`
}

// TraceStats holds summary statistics for a run.
type TraceStats struct {
	TotalFirings int `json:"total_firings"`
	Phases       int `json:"phases"`
}

// RunList holds the run tokens journaled for an event.
type RunList struct {
	Event string   `json:"event"`
	Runs  []string `json:"runs"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect journaled runs",
		Long: `Inspect dispatch runs recorded in a journal.

With --run, shows the firings of one journaled run in order: which
listener fired, in which phase, at which tick.

With --event, lists the run tokens journaled for that event in
creation order.

Examples:
  phasebus trace --db ./dispatch.db --run 0190cabc-...
  phasebus trace --db ./dispatch.db --event entity/tick
  phasebus trace --db ./dispatch.db --run 0190cabc-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunToken, "run", "", "run token to trace")
	cmd.Flags().StringVar(&opts.Event, "event", "", "list runs for an event")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	if opts.RunToken == "" && opts.Event == "" {
		return NewExitError(ExitCommandError, "either --run or --event is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.RunToken == "" {
		return listRuns(ctx, opts, j, cmd)
	}

	run, err := j.LoadRun(ctx, opts.RunToken)
	if errors.Is(err, sql.ErrNoRows) {
		if opts.Format == "json" {
			return outputTraceJSON(cmd, TraceResult{
				Run:     opts.RunToken,
				Firings: []journal.Firing{},
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No run found for token: %s\n", opts.RunToken)
		return nil
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load run", err)
	}

	result := TraceResult{
		Run:      run.Token,
		Event:    run.Event,
		Scenario: run.Scenario,
		Firings:  run.Firings,
		Stats: TraceStats{
			TotalFirings: len(run.Firings),
			Phases:       countPhases(run.Firings),
		},
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, result)
	}

	return outputTraceText(cmd, result)
}

// listRuns outputs the run tokens journaled for an event.
func listRuns(ctx context.Context, opts *TraceOptions, j *journal.Journal, cmd *cobra.Command) error {
	tokens, err := j.ListRuns(ctx, opts.Event)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		response := CLIResponse{
			Status: "ok",
			Data:   RunList{Event: opts.Event, Runs: tokens},
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	w := cmd.OutOrStdout()
	if len(tokens) == 0 {
		fmt.Fprintf(w, "No runs found for event: %s\n", opts.Event)
		return nil
	}

	fmt.Fprintf(w, "Runs for event %s:\n", opts.Event)
	for _, token := range tokens {
		fmt.Fprintf(w, "  %s\n", token)
	}
	return nil
}

// countPhases counts the distinct phases among firings.
func countPhases(firings []journal.Firing) int {
	seen := make(map[string]struct{})
	for _, f := range firings {
		seen[f.Phase] = struct{}{}
	}
	return len(seen)
}

// outputTraceJSON outputs the trace result as JSON.
func outputTraceJSON(cmd *cobra.Command, result TraceResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Run: %s\n", result.Run)
	fmt.Fprintf(w, "Event: %s\n", result.Event)
	if result.Scenario != "" {
		fmt.Fprintf(w, "Scenario: %s\n", result.Scenario)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Firings ===")
	if len(result.Firings) == 0 {
		fmt.Fprintln(w, "  (no firings)")
	} else {
		for _, f := range result.Firings {
			fmt.Fprintf(w, "  [%d] %s in %s (tick %d)\n", f.Seq, f.Listener, f.Phase, f.Tick)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%d firing(s) across %d phase(s)\n", result.Stats.TotalFirings, result.Stats.Phases)
	return nil
}
