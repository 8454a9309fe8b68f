package command

import "github.com/google/uuid"

// IDGenerator assigns identifiers to history records.
// Implemented by UUIDv7Generator (production) and testutil.SequenceGenerator.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers, so journal
// entries sort by creation time.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
