package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb/console/internal/model"
)

func TestFileMedium_MissingFileIsEmpty(t *testing.T) {
	m := NewFileMedium(filepath.Join(t.TempDir(), "absent.json"))
	snap, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFileMedium_BlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	snap, err := NewFileMedium(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFileMedium_CorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewFileMedium(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileMedium_BadInstanceIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"User.1": {"id": "1"}}`), 0644))

	_, err := NewFileMedium(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "User.1")
}

func TestFileMedium_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	m := NewFileMedium(path)

	inst := model.New("State", "s1", testTime)
	inst.Set("name", model.String("California"))
	require.NoError(t, m.Save(context.Background(), Snapshot{inst.Identity(): inst}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `{
  "State.s1": {
    "__class__": "State",
    "created_at": "2024-03-01T12:30:00.000000",
    "id": "s1",
    "name": "California",
    "updated_at": "2024-03-01T12:30:00.000000"
  }
}
`
	assert.Equal(t, want, string(data))
}

func TestFileMedium_EmptyTableLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	require.NoError(t, NewFileMedium(path).Save(context.Background(), Snapshot{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestFileMedium_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewFileMedium(filepath.Join(t.TempDir(), "file.json"))

	snap := Snapshot{}
	for _, inst := range []*model.Instance{
		createTestInstance("User", "u1"),
		createTestInstance("Place", "p1"),
		model.New("BaseModel", "b1", testTime),
	} {
		snap[inst.Identity()] = inst
	}

	require.NoError(t, m.Save(ctx, snap))
	got, err := m.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, model.Float(37.5), got["Place.p1"].Attrs["latitude"])
	assert.Equal(t, model.Int(3), got["Place.p1"].Attrs["number_rooms"])
}

func TestFileMedium_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewFileMedium(filepath.Join(dir, "file.json"))
	require.NoError(t, m.Save(context.Background(), Snapshot{}))
	require.NoError(t, m.Save(context.Background(), Snapshot{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "file.json", entries[0].Name())
}

func TestFileMedium_SaveIntoMissingDirFails(t *testing.T) {
	m := NewFileMedium(filepath.Join(t.TempDir(), "nope", "file.json"))
	assert.Error(t, m.Save(context.Background(), Snapshot{}))
}

func TestFileMedium_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewFileMedium(filepath.Join(t.TempDir(), "file.json"))
	assert.ErrorIs(t, m.Save(ctx, Snapshot{}), context.Canceled)
	_, err := m.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileMedium_DecomposedInputRoundTrips(t *testing.T) {
	ctx := context.Background()
	s, medium := createTestStore(t)

	inst := model.New("Cafe\u0301", "u1", testTime)
	inst.Set("e\u0301", model.String("decomposed"))
	inst.Set("\u00e9", model.String("composed"))
	inst.Set("name", model.String("Jose\u0301"))
	s.Insert(inst)
	require.NoError(t, s.Save(ctx))

	reloaded, err := Open(ctx, medium)
	require.NoError(t, err)
	if diff := cmp.Diff(s.All(), reloaded.All()); diff != "" {
		t.Errorf("reloaded table mismatch (-want +got):\n%s", diff)
	}

	got, err := reloaded.Get(model.IdentityOf("Cafe\u0301", "u1"))
	require.NoError(t, err)
	assert.Len(t, got.Attrs, 2)
	assert.Equal(t, model.String("Jos\u00e9"), got.Attrs["name"])
	assert.Equal(t, model.String("composed"), got.Attrs["\u00e9"])
}

func TestFileMedium_DecomposedKeysReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.json")
	doc := "{\"Cafe\u0301.c1\": {\"__class__\": \"Cafe\u0301\", \"id\": \"c1\"}}"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	s, err := Open(context.Background(), NewFileMedium(path))
	require.NoError(t, err)
	_, err = s.Get("Caf\u00e9.c1")
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Count("Cafe\u0301"))
}
