package repository

import "errors"

// Sentinel errors shared by every repository implementation. Services map
// them onto their own error kinds; handlers map those onto HTTP statuses.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
