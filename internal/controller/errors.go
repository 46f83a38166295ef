package controller

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned for a request-issuing intent while another is in flight.
	ErrBusy = errors.New("another request is in progress")

	// ErrMissingID is returned when an intent other than create gets a todo
	// the server has never acknowledged.
	ErrMissingID = errors.New("todo has no id")

	ErrInvalidPage = errors.New("page must be >= 1")
)

// StaleIndexError means neither the recorded index nor the id locate the todo
// in the current page.
type StaleIndexError struct {
	ID    int64
	Index int
	Len   int
}

func (e *StaleIndexError) Error() string {
	return fmt.Sprintf("todo %d is no longer on this page (index %d, %d items)", e.ID, e.Index, e.Len)
}
