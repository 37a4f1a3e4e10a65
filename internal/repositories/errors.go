package repositories

import "errors"

// ErrNotFound is returned when a record or storage slot does not exist.
var ErrNotFound = errors.New("not found")
