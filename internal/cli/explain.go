package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/phasebus/internal/manifest"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Event string // optional - explain a single event
}

// EventOrder is the resolved phase order for one event declaration.
type EventOrder struct {
	Event    string   `json:"event"`
	Phases   []string `json:"phases"`
	Warnings []string `json:"warnings,omitempty"`
}

// ExplainResult holds the resolved orders for a manifest.
type ExplainResult struct {
	Events []EventOrder `json:"events"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <manifest-dir>",
		Short: "Resolve and print phase orders",
		Long: `Resolve each event declaration in a manifest to its final phase order.

The printed order is exactly the order listeners would dispatch in:
constraints applied, cycles collapsed, ties broken by phase id. Cycles
are shown as warnings next to the affected event.

Examples:
  phasebus explain ./manifests
  phasebus explain ./manifests --event entity/tick
  phasebus explain ./manifests --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Event, "event", "", "explain a single event")

	return cmd
}

func runExplain(opts *ExplainOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	m, loadErrors := manifest.Load(dir, manifest.LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *manifest.LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
		}
		_ = formatter.Error(manifest.ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	decls := m.Events
	if opts.Event != "" {
		decl, ok := m.Event(opts.Event)
		if !ok {
			msg := fmt.Sprintf("event %q not declared in manifest", opts.Event)
			_ = formatter.Error(manifest.ErrCodeNotFound, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
		decls = []manifest.EventDecl{decl}
	}

	result := ExplainResult{}
	for _, decl := range decls {
		formatter.VerboseLog("Resolving event: %s", decl.Name)

		order, warnings, err := decl.Resolve()
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to resolve event %q", decl.Name), err)
		}

		eo := EventOrder{Event: decl.Name, Phases: order}
		for _, w := range warnings {
			eo.Warnings = append(eo.Warnings, w.Message)
		}
		result.Events = append(result.Events, eo)
	}

	if opts.Format == "json" {
		return outputExplainJSON(cmd, result)
	}

	return outputExplainText(cmd, result)
}

// outputExplainJSON outputs the resolved orders as JSON.
func outputExplainJSON(cmd *cobra.Command, result ExplainResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputExplainText outputs the resolved orders as text.
func outputExplainText(cmd *cobra.Command, result ExplainResult) error {
	w := cmd.OutOrStdout()

	for _, e := range result.Events {
		fmt.Fprintf(w, "%s: %s\n", e.Event, strings.Join(e.Phases, " -> "))
		for _, warning := range e.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
	}

	return nil
}
