package dto

import (
	"fmt"
	"slices"
	"strings"
)

// TitleMaxLen is the maximum title length in characters.
const TitleMaxLen = 100

type Todo struct {
	ID            int64      `json:"id,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Completed     bool       `json:"completed"`
	CreatedDate   *Timestamp `json:"createdDate"`
	CompletedDate *Timestamp `json:"completedDate"`
	Tags          []string   `json:"tags"`
}

// HasID reports whether the server has acknowledged the todo.
func (t Todo) HasID() bool {
	return t.ID != 0
}

// Clone returns a deep copy of t.
func (t Todo) Clone() Todo {
	c := t
	if t.Tags != nil {
		c.Tags = slices.Clone(t.Tags)
	}
	if t.CreatedDate != nil {
		ts := *t.CreatedDate
		c.CreatedDate = &ts
	}
	if t.CompletedDate != nil {
		ts := *t.CompletedDate
		c.CompletedDate = &ts
	}
	return c
}

// Validate checks the fields the client is responsible for.
func (t Todo) Validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if n := len([]rune(title)); n > TitleMaxLen {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("Title must be at most %d characters (got %d)", TitleMaxLen, n),
		}
	}
	return nil
}

// ValidationError is a local failure that never reaches the backend.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseTags splits comma-separated text into trimmed, non-empty tags.
func ParseTags(text string) []string {
	tags := []string{}
	for _, part := range strings.Split(text, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
