package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures:\n%v", result.Errors)
		})
	}
}

func TestScenarios_Deterministic(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		first, err := Run(scenario)
		require.NoError(t, err)
		second, err := Run(scenario)
		require.NoError(t, err)
		assert.Equal(t, string(first.Transcript(scenario.Name)), string(second.Transcript(scenario.Name)), scenario.Name)
	}
}

func TestTranscriptFormat(t *testing.T) {
	result := NewResult()
	result.AddStep("count User", "0\n")
	result.AddStep("destroy User $1", "")
	result.Persisted = "{}\n"

	want := "# scenario: demo\n> count User\n0\n> destroy User $1\n# file.json\n{}\n"
	assert.Equal(t, want, string(result.Transcript("demo")))
}
