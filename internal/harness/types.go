package harness

import (
	"github.com/hbnb/console/internal/store"
)

// Step is one input line and everything the console printed for it.
type Step struct {
	Line   string `json:"line"`
	Output string `json:"output"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Steps holds the transcript in input order. Setup lines are not included.
	Steps []Step `json:"steps"`

	// Stopped is true when a quit or EOF line ended the session early.
	Stopped bool `json:"stopped"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Objects is the final object table.
	Objects store.Snapshot `json:"-"`

	// Persisted is the content of the file medium after the session.
	Persisted string `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Steps:   []Step{},
		Errors:  []string{},
		Objects: store.Snapshot{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a transcript entry.
func (r *Result) AddStep(line, output string) {
	r.Steps = append(r.Steps, Step{Line: line, Output: output})
}
