package storage

import "errors"

var (
	// ErrDuplicate means an insert hit a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate row")
	// ErrJobExists means the source already has a pending or running job.
	ErrJobExists = errors.New("job already queued for source")
)
