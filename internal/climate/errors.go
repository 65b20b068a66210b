package climate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrKeyNotFound is matched by every *KeyNotFoundError via errors.Is.
var ErrKeyNotFound = errors.New("key not found")

// ErrEmptyWindow indicates the year window left no year columns.
var ErrEmptyWindow = errors.New("empty year window")

// SchemaError indicates the input lacks required columns.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("schema error in %s: missing columns %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema error: missing columns %s", strings.Join(e.Missing, ", "))
}

// KeyNotFoundError indicates a requested country or indicator is absent.
type KeyNotFoundError struct {
	Kind string // country|indicator
	Key  string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *KeyNotFoundError) Is(target error) bool { return target == ErrKeyNotFound }
