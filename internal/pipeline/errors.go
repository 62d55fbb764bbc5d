package pipeline

import (
	"errors"
	"fmt"
)

var ErrAlreadyProcessing = errors.New("shift processing is already in progress")

// UpstreamFetchError means the POS could not be read. Nothing was persisted.
type UpstreamFetchError struct {
	Page int
	Err  error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch receipts page %d: %v", e.Page, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// PersistenceError means the summary could not be stored. The computed
// summary is still returned on the result.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
