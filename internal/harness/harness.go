package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/hbnb/console/internal/console"
	"github.com/hbnb/console/internal/schema"
	"github.com/hbnb/console/internal/store"
	"github.com/hbnb/console/internal/testutil"
)

// idRef matches $N references to the Nth generated id.
var idRef = regexp.MustCompile(`\$(\d+)`)

// expandIDs replaces $N with the id SequenceIDs generates Nth.
func expandIDs(s string) string {
	return idRef.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.ParseUint(m[1:], 10, 64)
		if err != nil {
			return m
		}
		return testutil.FormatID(n)
	})
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh file medium in a temporary directory.
// Deterministic helpers ensure reproducible transcripts.
//
// Execution flow:
//  1. Load the class registry (built-in or the scenario's schema)
//  2. Open an empty store in a temp dir
//  3. Execute setup lines, discarding output
//  4. Execute transcript lines, recording output per line
//  5. Evaluate assertions against the transcript and final table
//
// A line that ends the session with an error (a failed save) fails the run.
func Run(scenario *Scenario) (*Result, error) {
	registry, err := loadRegistry(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load class registry: %w", err)
	}

	dir, err := os.MkdirTemp("", "hbnb-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	medium := store.NewFileMedium(filepath.Join(dir, "file.json"))
	st, err := store.Open(ctx, medium)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	out := &bytes.Buffer{}
	sh := console.New(st, registry, out,
		console.WithIDs(testutil.NewSequenceIDs()),
		console.WithClock(testutil.NewDeterministicClock(testutil.Epoch, time.Second)),
	)

	for i, line := range scenario.Setup {
		stop, err := sh.Exec(ctx, expandIDs(line))
		if err != nil {
			return nil, fmt.Errorf("setup line %d: %w", i+1, err)
		}
		if stop {
			return nil, fmt.Errorf("setup line %d ends the session", i+1)
		}
	}

	result := NewResult()
	for i, line := range scenario.Lines {
		out.Reset()
		stop, err := sh.Exec(ctx, expandIDs(line))
		if err != nil {
			return nil, fmt.Errorf("line %d (%q): %w", i+1, line, err)
		}
		result.AddStep(line, out.String())
		if stop {
			result.Stopped = true
			break
		}
	}

	result.Objects = store.Snapshot(st.All())
	data, err := os.ReadFile(medium.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read persisted table: %w", err)
	}
	result.Persisted = string(data)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func loadRegistry(path string) (*schema.Registry, error) {
	if path != "" {
		return schema.LoadFile(path)
	}
	return schema.Load()
}
