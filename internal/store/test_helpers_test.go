package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hbnb/console/internal/model"
)

var testTime = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

// createTestStore creates a file-backed store in a temp directory.
func createTestStore(t *testing.T) (*Store, *FileMedium) {
	t.Helper()
	medium := NewFileMedium(filepath.Join(t.TempDir(), "file.json"))
	s, err := Open(context.Background(), medium)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, medium
}

// createTestSQLite opens a SQLite medium in a temp directory.
func createTestSQLite(t *testing.T) *SQLiteMedium {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	m, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// createTestInstance creates an instance with a few attributes of every kind.
func createTestInstance(class, id string) *model.Instance {
	inst := model.New(class, id, testTime)
	inst.Set("name", model.String("test "+id))
	inst.Set("number_rooms", model.Int(3))
	inst.Set("latitude", model.Float(37.5))
	return inst
}

// memMedium is an in-memory Medium for store tests.
type memMedium struct {
	snap    Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memMedium) Load(ctx context.Context) (Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := Snapshot{}
	for k, v := range m.snap {
		out[k] = v.Clone()
	}
	return out, nil
}

func (m *memMedium) Save(ctx context.Context, snap Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snap = Snapshot{}
	for k, v := range snap {
		m.snap[k] = v.Clone()
	}
	return nil
}

func (m *memMedium) Close() error { return nil }
