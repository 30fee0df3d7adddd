package storage

import "errors"

// Sentinel errors returned by the engine. Any other filesystem error is
// wrapped with fmt.Errorf("%s: %w", context, err) and returned as-is.
var (
	// ErrNotFound is returned by Get when a key has no associated value.
	ErrNotFound = errors.New("filekv: key not found")

	// ErrKeyEmpty is returned by Put/Get when the caller passes an empty key.
	ErrKeyEmpty = errors.New("filekv: key must not be empty")

	// ErrTransactionDone is returned by Commit/Rollback when the
	// transaction already reached a terminal state (double-terminal
	// transition).
	ErrTransactionDone = errors.New("filekv: transaction already committed or rolled back")
)
