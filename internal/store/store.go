package store

import "errors"

// ErrNotFound is returned by mutations that matched no row.
var ErrNotFound = errors.New("not found")

type scanner interface{ Scan(...any) error }
