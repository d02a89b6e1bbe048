package store

import (
	"context"
	"slices"

	"github.com/hbnb/console/internal/model"
)

// Snapshot is the whole object table as handed to and from a Medium:
// identity -> instance.
type Snapshot map[string]*model.Instance

// Identities returns the snapshot keys in sorted order.
func (s Snapshot) Identities() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Medium is the durable copy of the object table.
//
// Load returns an empty snapshot, not an error, when nothing has been saved yet.
// Save replaces everything previously saved.
type Medium interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}
