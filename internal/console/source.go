package console

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces ids for new instances.
type IDGenerator interface {
	Generate() string
}

// Clock supplies creation and update stamps.
type Clock interface {
	Now() time.Time
}

// UUIDGenerator generates random (version 4) UUIDs, the id format persisted
// files already contain.
type UUIDGenerator struct{}

// Generate returns a new UUID string.
func (UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
