package database

import "errors"

var (
	ErrNotFound               = errors.New("record not found")
	ErrConcurrentModification = errors.New("record was modified concurrently")
	ErrDuplicateEmail         = errors.New("email already in use")
)
