package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript renders a result for golden comparison:
//
//	# scenario: <name>
//	> <line>
//	<output>
//	...
//	# file.json
//	<persisted table>
//
// Lines keep their $N references; output shows the real ids.
func (r *Result) Transcript(name string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# scenario: %s\n", name)
	for _, step := range r.Steps {
		fmt.Fprintf(&buf, "> %s\n", step.Line)
		buf.WriteString(step.Output)
	}
	buf.WriteString("# file.json\n")
	buf.WriteString(r.Persisted)
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares its transcript against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the transcript doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result's transcript against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, result.Transcript(scenarioName))
}
