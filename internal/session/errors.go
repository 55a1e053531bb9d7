package session

import "errors"

// ErrNotFound is returned when a requested profile or setting does not exist.
var ErrNotFound = errors.New("not found")
