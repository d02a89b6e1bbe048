package harness

import (
	"fmt"
	"strings"

	"github.com/hbnb/console/internal/model"
)

// AssertionError is returned when an assertion fails.
// It includes the transcript to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Steps    []Step // Transcript for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nTranscript:\n")
	for i, step := range e.Steps {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, step.Line)
	}

	return buf.String()
}

// assertOutputEquals compares one step's output, ignoring the final newline.
func assertOutputEquals(steps []Step, a Assertion) error {
	if a.Step > len(steps) {
		return &AssertionError{
			Type:     AssertOutputEquals,
			Expected: fmt.Sprintf("step %d to run", a.Step),
			Actual:   fmt.Sprintf("session ended after %d steps", len(steps)),
			Steps:    steps,
		}
	}

	got := strings.TrimSuffix(steps[a.Step-1].Output, "\n")
	want := strings.TrimSuffix(expandIDs(a.Text), "\n")
	if got != want {
		return &AssertionError{
			Type:     AssertOutputEquals,
			Expected: fmt.Sprintf("step %d output %q", a.Step, want),
			Actual:   fmt.Sprintf("%q", got),
			Steps:    steps,
		}
	}
	return nil
}

// assertOutputContains searches one step's output, or all of them for step 0.
func assertOutputContains(steps []Step, a Assertion) error {
	want := expandIDs(a.Text)
	for i, step := range steps {
		if a.Step != 0 && a.Step != i+1 {
			continue
		}
		if strings.Contains(step.Output, want) {
			return nil
		}
	}

	where := "any step"
	if a.Step != 0 {
		where = fmt.Sprintf("step %d", a.Step)
	}
	return &AssertionError{
		Type:     AssertOutputContains,
		Expected: fmt.Sprintf("%s to print %q", where, want),
		Actual:   "not found in output",
		Steps:    steps,
	}
}

// assertCount checks the number of instances of a class in the final table.
func assertCount(result *Result, a Assertion) error {
	count := 0
	for identity := range result.Objects {
		if class, _, _ := model.ParseIdentity(identity); class == a.Class {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d instances of %s", a.Count, a.Class),
			Actual:   fmt.Sprintf("%d instances", count),
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertAttribute checks one attribute of one instance, kind included.
func assertAttribute(result *Result, a Assertion) error {
	identity := expandIDs(a.Identity)
	inst, ok := result.Objects[identity]
	if !ok {
		return &AssertionError{
			Type:     AssertAttribute,
			Expected: fmt.Sprintf("%s to exist", identity),
			Actual:   "not in table",
			Steps:    result.Steps,
		}
	}

	want, err := model.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("attribute assertion on %s.%s: %w", identity, a.Attr, err)
	}
	got, ok := inst.Get(a.Attr)
	if !ok || got != want {
		actual := "unset"
		if ok {
			actual = fmt.Sprintf("%s %s", model.KindOf(got), model.Repr(got))
		}
		return &AssertionError{
			Type:     AssertAttribute,
			Expected: fmt.Sprintf("%s.%s = %s %s", identity, a.Attr, model.KindOf(want), model.Repr(want)),
			Actual:   actual,
			Steps:    result.Steps,
		}
	}
	return nil
}

// assertAbsent checks that an identity is not in the final table.
func assertAbsent(result *Result, a Assertion) error {
	identity := expandIDs(a.Identity)
	if _, ok := result.Objects[identity]; ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Expected: fmt.Sprintf("%s to be absent", identity),
			Actual:   "present in table",
			Steps:    result.Steps,
		}
	}
	return nil
}

// EvaluateAssertions runs all assertions and returns failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutputEquals:
			err = assertOutputEquals(result.Steps, a)
		case AssertOutputContains:
			err = assertOutputContains(result.Steps, a)
		case AssertCount:
			err = assertCount(result, a)
		case AssertAttribute:
			err = assertAttribute(result, a)
		case AssertAbsent:
			err = assertAbsent(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
