package harness

// Firing is one recorded listener invocation.
type Firing struct {
	Phase    string `json:"phase"`
	Listener string `json:"listener"`
	Tick     int64  `json:"tick"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	// True if the outcome matches every expect field.
	Pass bool `json:"pass"`

	// Phases is the resolved phase order the event dispatched in.
	Phases []string `json:"phases"`

	// Firings contains all listener invocations in firing order.
	Firings []Firing `json:"firings"`

	// Warnings contains cycle diagnostics from ordering resolution.
	Warnings []string `json:"warnings,omitempty"`

	// Errors contains mismatch messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Phases:  []string{},
		Firings: []Firing{},
		Errors:  []string{},
	}
}

// AddError adds a mismatch message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
