package store

import (
	"errors"

	"github.com/chris/tock/internal/db"
)

var (
	// ErrStorageUnavailable is returned when the key-value backend cannot be reached.
	// It is the same value as db.ErrUnavailable so either name matches with errors.Is.
	ErrStorageUnavailable = db.ErrUnavailable

	// ErrCorruptRecord is returned when the stored collection fails to parse
	ErrCorruptRecord = errors.New("corrupt counter record")
)
