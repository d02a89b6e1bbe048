package console

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hbnb/console/internal/schema"
	"github.com/hbnb/console/internal/store"
	"github.com/hbnb/console/internal/testutil"
)

// testShell bundles a shell with everything a test inspects.
type testShell struct {
	*Shell
	out    *bytes.Buffer
	store  *store.Store
	medium *store.FileMedium
	clock  *testutil.DeterministicClock
}

// newTestShell creates a scripted shell over a file store in a temp dir,
// with sequential ids and a clock stepping one second per reading.
func newTestShell(t *testing.T, opts ...Option) *testShell {
	t.Helper()

	registry, err := schema.Load()
	require.NoError(t, err)

	medium := store.NewFileMedium(filepath.Join(t.TempDir(), "file.json"))
	st, err := store.Open(context.Background(), medium)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := testutil.NewDeterministicClock(testutil.Epoch, time.Second)
	out := &bytes.Buffer{}
	base := []Option{WithIDs(testutil.NewSequenceIDs()), WithClock(clock)}
	sh := New(st, registry, out, append(base, opts...)...)

	return &testShell{Shell: sh, out: out, store: st, medium: medium, clock: clock}
}

// run executes one line and returns what it printed.
func (ts *testShell) run(t *testing.T, line string) string {
	t.Helper()
	ts.out.Reset()
	stop, err := ts.Exec(context.Background(), line)
	require.NoError(t, err, line)
	require.False(t, stop, line)
	return ts.out.String()
}

// create runs a create command and returns the new id.
func (ts *testShell) create(t *testing.T, args string) string {
	t.Helper()
	return strings.TrimSpace(ts.run(t, "create "+args))
}

// failingMedium loads nothing and refuses to save.
type failingMedium struct {
	err error
}

func (m *failingMedium) Load(context.Context) (store.Snapshot, error) {
	return store.Snapshot{}, nil
}

func (m *failingMedium) Save(context.Context, store.Snapshot) error {
	return m.err
}

func (m *failingMedium) Close() error { return nil }
