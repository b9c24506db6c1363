package journal

import (
	"context"
	"fmt"
)

// LoadRun returns a run and its firings by token.
// Firings are ordered by seq ASC. Returns sql.ErrNoRows if the token is
// unknown.
func (j *Journal) LoadRun(ctx context.Context, token string) (Run, error) {
	run := Run{Token: token}

	err := j.db.QueryRowContext(ctx, `
		SELECT event, scenario
		FROM runs
		WHERE token = ?
	`, token).Scan(&run.Event, &run.Scenario)
	if err != nil {
		return Run{}, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, phase, listener, tick
		FROM firings
		WHERE run_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return Run{}, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f Firing
		if err := rows.Scan(&f.Seq, &f.Phase, &f.Listener, &f.Tick); err != nil {
			return Run{}, fmt.Errorf("scan firing: %w", err)
		}
		run.Firings = append(run.Firings, f)
	}

	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate firings: %w", err)
	}

	// Return empty slice instead of nil
	if run.Firings == nil {
		run.Firings = []Firing{}
	}

	return run, nil
}

// ListRuns returns the tokens of journaled runs for an event, ordered by
// creation time. UUIDv7 tokens break creation-time ties in issue order.
//
// Returns an empty slice (not nil) if the event has no runs.
func (j *Journal) ListRuns(ctx context.Context, event string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT token
		FROM runs
		WHERE event = ?
		ORDER BY created_at ASC, token ASC
	`, event)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan run token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	if tokens == nil {
		tokens = []string{}
	}

	return tokens, nil
}
