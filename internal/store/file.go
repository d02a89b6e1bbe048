package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hbnb/console/internal/model"
)

// FileMedium persists the object table as a single JSON document mapping
// identity to the instance's flat attribute mapping.
type FileMedium struct {
	path string
}

// NewFileMedium returns a medium backed by the JSON file at path.
// The file is not touched until Load or Save.
func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

// Path returns the backing file path.
func (m *FileMedium) Path() string {
	return m.path
}

// Load reads the file. A missing or blank file is an empty table.
func (m *FileMedium) Load(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", m.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Snapshot{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.path, err)
	}

	snap := make(Snapshot, len(raw))
	for identity, body := range raw {
		inst := new(model.Instance)
		if err := json.Unmarshal(body, inst); err != nil {
			return nil, fmt.Errorf("decode %s: %s: %w", m.path, identity, err)
		}
		snap[identity] = inst
	}
	return snap, nil
}

// Save writes the whole table to a temporary file next to the target and
// renames it into place.
func (m *FileMedium) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("encode %s: %w", m.path, err)
	}

	dir := filepath.Dir(m.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("save %s: %w", m.path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // No-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save %s: %w", m.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save %s: %w", m.path, err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return fmt.Errorf("save %s: %w", m.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (m *FileMedium) Close() error {
	return nil
}

// encodeSnapshot renders identity-sorted, two-space indented JSON.
func encodeSnapshot(snap Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, identity := range snap.Identities() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(identity)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(snap[identity])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", identity, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
