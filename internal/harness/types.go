package harness

import "github.com/roach88/sqliteurl/internal/ir"

// StepTrace records what one step did.
type StepTrace struct {
	Index   int       `json:"index"`
	Name    string    `json:"name,omitempty"`
	SQL     string    `json:"sql"`
	Args    ir.List   `json:"args"`
	Columns []string  `json:"columns,omitempty"`
	Rows    []ir.List `json:"rows,omitempty"`
	Digest  string    `json:"digest,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// Failed reports whether the statement returned an error.
func (s StepTrace) Failed() bool {
	return s.Error != ""
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Skipped is set when the scenario needs something the driver lacks.
	// A skipped result also passes.
	Skipped bool `json:"skipped,omitempty"`

	// Driver is the driver the scenario ran on.
	Driver string `json:"driver"`

	// Trace holds one entry per step, in order.
	Trace []StepTrace `json:"trace"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(driver string) *Result {
	return &Result{
		Pass:   true,
		Driver: driver,
		Trace:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
