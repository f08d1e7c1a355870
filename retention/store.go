// Package retention provides the memory that survives deep sleep. Values are
// read and written through a Store on every access so that nothing retained
// lives in ordinary program memory.
package retention

import (
	"errors"
	"fmt"
)

// ErrOverflow is returned when a value does not fit into a slot.
var ErrOverflow = errors.New("retention: value exceeds slot width")

// ErrNegative is returned when a negative value is written to a slot.
var ErrNegative = errors.New("retention: negative value")

// A Store is the backing medium of retention memory. A slot that has never
// been written reads as not found.
type Store interface {
	// Read returns the value held by the slot.
	Read(slot string) (value int64, found bool, err error)

	// Write stores a value into the slot.
	Write(slot string, value int64) error

	// Erase clears all slots, the same as a power loss does.
	Erase() error

	// Close releases the medium.
	Close() error
}

// Kind names a Store implementation.
type Kind string

// Known store kinds.
const (
	KindMemory Kind = "memory"
	KindFile   Kind = "file"
	KindSQLite Kind = "sqlite"
)

// Open creates a store of the given kind. The path is ignored by memory
// stores.
func Open(kind Kind, path string) (Store, error) {
	switch kind {
	case KindMemory, "":
		return NewMemoryStore(), nil
	case KindFile:
		if path == "" {
			return nil, fmt.Errorf("retention: %s store needs a path", kind)
		}

		return NewFileStore(path), nil
	case KindSQLite:
		if path == "" {
			return nil, fmt.Errorf("retention: %s store needs a path", kind)
		}

		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("retention: unknown store kind %q", kind)
	}
}
