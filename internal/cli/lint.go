package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/phasebus/internal/manifest"
)

// LintIssue is one finding from linting a manifest.
type LintIssue struct {
	Severity string `json:"severity"` // "error" or "warning"
	Event    string `json:"event,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

// LintResult holds lint findings for a manifest.
type LintResult struct {
	Valid    bool        `json:"valid"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`
}

// NewLintCommand creates the lint command.
func NewLintCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <manifest-dir>",
		Short: "Check event declarations",
		Long: `Check all event declarations in a manifest.

Structural problems (empty names, duplicate baseline phases, self
constraints) are errors and fail the command. Ordering cycles are
reported as warnings only: dispatch handles them by collapsing the
cycle, so they never block loading.

Exit codes:
  0  declarations valid (warnings allowed)
  1  declaration errors found
  2  manifest could not be read`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLint(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, loadErrors := manifest.Load(dir, manifest.LoadModeCollectAll)

	// Infrastructure errors (missing directory, no files, broken CUE)
	// surface before any declaration was decoded.
	if m == nil && len(loadErrors) > 0 {
		var loadErr *manifest.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		_ = formatter.Error(manifest.ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	result := LintResult{Valid: true}

	for _, err := range loadErrors {
		issue := LintIssue{Severity: "error", Message: err.Error()}
		var loadErr *manifest.LoadError
		if errors.As(err, &loadErr) {
			issue.Code = loadErr.Code
			issue.Message = loadErr.Message
			issue.Line = lineOf(loadErr.Pos)
		}
		result.Errors = append(result.Errors, issue)
	}

	for _, decl := range m.Events {
		formatter.VerboseLog("Linting event: %s", decl.Name)

		_, warnings, err := decl.Resolve()
		if err != nil {
			// Declarations that survived validation resolve cleanly, so
			// any failure here is a real finding.
			result.Errors = append(result.Errors, LintIssue{
				Severity: "error",
				Event:    decl.Name,
				Message:  err.Error(),
			})
			continue
		}
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, LintIssue{
				Severity: "warning",
				Event:    decl.Name,
				Message:  w.Message,
			})
		}
	}

	if len(result.Errors) > 0 {
		result.Valid = false
		return outputLintErrors(formatter, result)
	}

	return outputLintSuccess(formatter, result, len(m.Events))
}

// lineOf extracts a line number from a token.Pos.
func lineOf(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputLintSuccess outputs lint results with no errors.
func outputLintSuccess(formatter *OutputFormatter, result LintResult, eventCount int) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %d event declaration(s) valid\n", eventCount)
	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s: %s\n", w.Event, w.Message)
	}
	return nil
}

// outputLintErrors outputs lint results containing errors.
func outputLintErrors(formatter *OutputFormatter, result LintResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("lint failed with %d error(s)", len(result.Errors)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Lint failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", issue.Line)
		}
		if issue.Code != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s\n\n", issue.Message)
		}
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(formatter.Writer, "  warning %s: %s\n", w.Event, w.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("lint failed with %d error(s)", len(result.Errors)))
}
