package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hbnb/console/internal/model"
)

func TestOpen_EmptyMedium(t *testing.T) {
	s, _ := createTestStore(t)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())
}

func TestOpen_LoadFailureIsReturned(t *testing.T) {
	boom := errors.New("disk on fire")
	_, err := Open(context.Background(), &memMedium{loadErr: boom})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestInsertGet(t *testing.T) {
	s := New(&memMedium{})
	inst := createTestInstance("User", "u1")
	s.Insert(inst)

	got, err := s.Get("User.u1")
	require.NoError(t, err)
	assert.Same(t, inst, got)
}

func TestInsertOverwritesSlot(t *testing.T) {
	s := New(&memMedium{})
	s.Insert(createTestInstance("User", "u1"))
	replacement := createTestInstance("User", "u1")
	replacement.Set("name", model.String("other"))
	s.Insert(replacement)

	assert.Equal(t, 1, s.Len())
	got, err := s.Get("User.u1")
	require.NoError(t, err)
	assert.Equal(t, model.String("other"), got.Attrs["name"])
}

func TestGet_NotFound(t *testing.T) {
	s := New(&memMedium{})
	_, err := s.Get("User.missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "User.missing", se.Identity)
}

func TestDelete(t *testing.T) {
	s := New(&memMedium{})
	s.Insert(createTestInstance("Place", "p1"))

	require.NoError(t, s.Delete("Place.p1"))
	assert.Equal(t, 0, s.Len())

	err := s.Delete("Place.p1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestIdentityIsUniqueAcrossClasses(t *testing.T) {
	s := New(&memMedium{})
	s.Insert(createTestInstance("User", "same"))
	s.Insert(createTestInstance("Place", "same"))

	assert.Equal(t, 2, s.Len())
	for k, v := range s.All() {
		assert.Equal(t, k, v.Identity())
	}
}

func TestAllOfClass(t *testing.T) {
	s := New(&memMedium{})
	s.Insert(createTestInstance("City", "c1"))
	s.Insert(createTestInstance("City", "c2"))
	s.Insert(createTestInstance("City", "c3"))
	s.Insert(createTestInstance("User", "u1"))
	// A class whose name extends another must not leak into its filter
	s.Insert(createTestInstance("CityHall", "h1"))

	cities := s.AllOfClass("City")
	assert.Len(t, cities, 3)
	for k := range cities {
		assert.Contains(t, []string{"City.c1", "City.c2", "City.c3"}, k)
	}

	assert.Equal(t, 3, s.Count("City"))
	assert.Equal(t, 1, s.Count("User"))
	assert.Equal(t, 0, s.Count("Review"))
	assert.Len(t, s.All(), 5)
}

func TestAllReturnsCopy(t *testing.T) {
	s := New(&memMedium{})
	s.Insert(createTestInstance("User", "u1"))

	all := s.All()
	delete(all, "User.u1")

	assert.Equal(t, 1, s.Len())
}

func TestSaveReload(t *testing.T) {
	ctx := context.Background()
	medium := &memMedium{}
	s := New(medium)
	s.Insert(createTestInstance("User", "u1"))
	s.Insert(createTestInstance("Review", "r1"))
	require.NoError(t, s.Save(ctx))
	assert.Equal(t, 1, medium.saves)

	s2, err := Open(ctx, medium)
	require.NoError(t, err)
	if diff := cmp.Diff(s.All(), s2.All()); diff != "" {
		t.Errorf("reloaded table mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveFailureIsReturned(t *testing.T) {
	boom := errors.New("read-only")
	s := New(&memMedium{saveErr: boom})
	s.Insert(createTestInstance("User", "u1"))

	err := s.Save(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestReload_RejectsMismatchedKey(t *testing.T) {
	medium := &memMedium{snap: Snapshot{
		"User.u1": createTestInstance("Place", "u1"),
	}}
	s := New(medium)
	s.Insert(createTestInstance("State", "keep"))

	err := s.Reload(context.Background())
	require.Error(t, err)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrCodeIdentityMismatch, se.Code)

	// Table untouched on failure
	_, err = s.Get("State.keep")
	assert.NoError(t, err)
}

func TestReload_ReplacesTable(t *testing.T) {
	ctx := context.Background()
	medium := &memMedium{}
	s := New(medium)
	s.Insert(createTestInstance("User", "u1"))
	require.NoError(t, s.Save(ctx))

	s.Insert(createTestInstance("User", "unsaved"))
	require.NoError(t, s.Reload(ctx))

	assert.Equal(t, 1, s.Len())
	_, err := s.Get("User.unsaved")
	assert.True(t, IsNotFound(err))
}

func TestRoundTripAfterInsertsAndDeletes(t *testing.T) {
	ctx := context.Background()
	s, medium := createTestStore(t)

	for _, id := range []string{"a", "b", "c", "d"} {
		s.Insert(createTestInstance("Amenity", id))
		require.NoError(t, s.Save(ctx))
	}
	require.NoError(t, s.Delete("Amenity.b"))
	require.NoError(t, s.Save(ctx))

	before := s.All()

	// reload(); save() leaves the persisted table unchanged
	require.NoError(t, s.Reload(ctx))
	require.NoError(t, s.Save(ctx))

	snap, err := medium.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(before, map[string]*model.Instance(snap)); diff != "" {
		t.Errorf("persisted table mismatch (-want +got):\n%s", diff)
	}
}

func TestReload_RejectsKeysCollidingAfterNormalization(t *testing.T) {
	medium := &memMedium{snap: Snapshot{
		"Cafe\u0301.x": model.New("Caf\u00e9", "x", testTime),
		"Caf\u00e9.x":  model.New("Caf\u00e9", "x", testTime),
	}}

	err := New(medium).Reload(context.Background())
	require.Error(t, err)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, ErrCodeIdentityMismatch, se.Code)
}
