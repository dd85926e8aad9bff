package snapshot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an id or truck number is not in the document.
	ErrNotFound = errors.New("record not found")

	// ErrStagingOccupied is returned when a staging door and position already
	// hold another truck. Placing a truck there is rejected, never overwritten.
	ErrStagingOccupied = errors.New("staging slot occupied")
)

// ValidationError reports a field constraint broken by a local edit. Edits
// that fail validation are never applied or pushed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// MalformedSnapshotError reports collections that were missing from a
// document and have been defaulted to empty.
type MalformedSnapshotError struct {
	Missing []string
}

func (e *MalformedSnapshotError) Error() string {
	return fmt.Sprintf("snapshot missing collections: %s", strings.Join(e.Missing, ", "))
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsMalformed reports whether err is or wraps a *MalformedSnapshotError.
func IsMalformed(err error) bool {
	var me *MalformedSnapshotError
	return errors.As(err, &me)
}
