package contracts

import (
	"errors"
	"fmt"
)

// Fatal derivation errors. Callers decide fallback display; the engine never
// substitutes a default value.
var (
	// ErrDivisionByZero indicates a degenerate snapshot or previous-period volume
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidInsight indicates an out-of-range score or priority on a ranked record
	ErrInvalidInsight = errors.New("invalid insight")

	// ErrEmptyWindow indicates the store holds too few snapshots for the accessor
	ErrEmptyWindow = errors.New("empty window")

	// ErrInvalidSnapshot indicates a negative sentiment component or volume
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// IntegrityWarning is a non-fatal DataIntegrityWarning: stored and recomputed
// values disagree. It is reported, never returned as a failure.
type IntegrityWarning struct {
	Subject string `json:"subject"`
	Field   string `json:"field"`
	Stored  string `json:"stored"`
	Derived string `json:"derived"`
}

func (w IntegrityWarning) String() string {
	return fmt.Sprintf("data integrity: %s.%s stored=%s derived=%s", w.Subject, w.Field, w.Stored, w.Derived)
}
