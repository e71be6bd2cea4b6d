package storage

import "errors"

// ErrNotFound is returned when a row the operation targets does not exist.
var ErrNotFound = errors.New("not found")
