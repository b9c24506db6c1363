package journal

import (
	"context"
	"fmt"
)

// Run is one journaled dispatch: a single trip through an event's
// combined invoker.
type Run struct {
	Token    string   `json:"token"`
	Event    string   `json:"event"`
	Scenario string   `json:"scenario,omitempty"`
	Firings  []Firing `json:"firings"`
}

// Firing is one listener invocation within a run.
type Firing struct {
	Seq      int    `json:"seq"`
	Phase    string `json:"phase"`
	Listener string `json:"listener"`
	Tick     int64  `json:"tick"`
}

// RecordRun writes a run and all of its firings in one transaction.
// Replaying a run with the same token is a no-op, so recording is safe
// to retry.
func (j *Journal) RecordRun(ctx context.Context, run Run) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (token, event, scenario)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, run.Token, run.Event, run.Scenario)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	for _, f := range run.Firings {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO firings (run_token, seq, phase, listener, tick)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(run_token, seq) DO NOTHING
		`, run.Token, f.Seq, f.Phase, f.Listener, f.Tick)
		if err != nil {
			return fmt.Errorf("record firing %d: %w", f.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}
