package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches gateway errors for ids the backend does not know.
var ErrNotFound = errors.New("todo not found")

// Error is the only error type returned by Client operations.
type Error struct {
	Op      string
	Status  int // 0 when no response was received
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

func transportError(op string) *Error {
	return &Error{Op: op, Message: fmt.Sprintf("Failed to %s: the todo service is unreachable", verbs[op])}
}

func statusError(op string, status int, detail string) *Error {
	if status == http.StatusNotFound {
		return &Error{Op: op, Status: status, Message: fmt.Sprintf("Failed to %s: todo not found", verbs[op])}
	}
	msg := fmt.Sprintf("Failed to %s (status %d)", verbs[op], status)
	if detail != "" {
		msg += ": " + detail
	}
	return &Error{Op: op, Status: status, Message: msg}
}

func malformedError(op string, status int) *Error {
	return &Error{Op: op, Status: status, Message: fmt.Sprintf("Failed to %s: unexpected response from the todo service", verbs[op])}
}

const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
	opToggle = "toggle"
)

var verbs = map[string]string{
	opList:   "load todos",
	opGet:    "load todo",
	opCreate: "create todo",
	opUpdate: "update todo",
	opDelete: "delete todo",
	opToggle: "update todo status",
}
