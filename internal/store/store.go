package store

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hbnb/console/internal/model"
)

// Store is the live object table: identity -> instance.
// Every key is exactly the Identity() of the instance stored under it.
//
// Store is not safe for concurrent use; the console runs one command at a time.
type Store struct {
	medium  Medium
	objects map[string]*model.Instance
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an empty store over medium. Nothing is loaded.
func New(medium Medium, opts ...Option) *Store {
	s := &Store{
		medium:  medium,
		objects: map[string]*model.Instance{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store over medium and reloads it.
// Any failure to read the medium is returned; a missing or empty medium is not
// a failure.
func Open(ctx context.Context, medium Medium, opts ...Option) (*Store, error) {
	s := New(medium, opts...)
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying medium.
func (s *Store) Close() error {
	return s.medium.Close()
}

// All returns every live instance keyed by identity.
// The map is a copy; the instances are shared.
func (s *Store) All() map[string]*model.Instance {
	out := make(map[string]*model.Instance, len(s.objects))
	for k, v := range s.objects {
		out[k] = v
	}
	return out
}

// AllOfClass returns the instances whose identity carries the class prefix.
func (s *Store) AllOfClass(class string) map[string]*model.Instance {
	prefix := model.IdentityOf(class, "")
	out := map[string]*model.Instance{}
	for k, v := range s.objects {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

// Count returns the number of instances of class.
func (s *Store) Count(class string) int {
	prefix := model.IdentityOf(class, "")
	n := 0
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// Len returns the number of live instances.
func (s *Store) Len() int {
	return len(s.objects)
}

// Get returns the instance stored at identity.
func (s *Store) Get(identity string) (*model.Instance, error) {
	inst, ok := s.objects[identity]
	if !ok {
		return nil, notFound(identity)
	}
	return inst, nil
}

// Insert adds or overwrites the slot at inst.Identity().
func (s *Store) Insert(inst *model.Instance) {
	s.objects[inst.Identity()] = inst
}

// Delete removes the instance stored at identity.
func (s *Store) Delete(identity string) error {
	if _, ok := s.objects[identity]; !ok {
		return notFound(identity)
	}
	delete(s.objects, identity)
	return nil
}

// Save writes the whole table to the medium. Calling it twice in a row
// produces the same durable state.
func (s *Store) Save(ctx context.Context) error {
	if err := s.medium.Save(ctx, Snapshot(s.objects)); err != nil {
		s.logger.Warn("save failed", zap.Error(err))
		return fmt.Errorf("save store: %w", err)
	}
	s.logger.Debug("store saved", zap.Int("objects", len(s.objects)))
	return nil
}

// Reload replaces the table with the medium's contents.
// On error the table is left untouched.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := s.medium.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload store: %w", err)
	}

	objects := make(map[string]*model.Instance, len(snap))
	for key, inst := range snap {
		identity := model.Normalize(key)
		if inst == nil || inst.Identity() != identity {
			return fmt.Errorf("reload store: %w", &Error{
				Code:     ErrCodeIdentityMismatch,
				Identity: key,
				Message:  "persisted key does not match instance class and id",
			})
		}
		if _, dup := objects[identity]; dup {
			return fmt.Errorf("reload store: %w", &Error{
				Code:     ErrCodeIdentityMismatch,
				Identity: key,
				Message:  "persisted key appears twice after normalization",
			})
		}
		objects[identity] = inst
	}

	s.objects = objects
	s.logger.Debug("store reloaded", zap.Int("objects", len(objects)))
	return nil
}
