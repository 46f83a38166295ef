package dto

import (
	"fmt"
	"strings"
)

type SortField string

const (
	SortByID            SortField = "ID"
	SortByTitle         SortField = "TITLE"
	SortByDescription   SortField = "DESCRIPTION"
	SortByCompleted     SortField = "COMPLETED"
	SortByCreatedDate   SortField = "CREATED_DATE"
	SortByCompletedDate SortField = "COMPLETED_DATE"
)

// SortFields lists the columns in display order.
var SortFields = []SortField{
	SortByID,
	SortByTitle,
	SortByDescription,
	SortByCompleted,
	SortByCreatedDate,
	SortByCompletedDate,
}

// ParseSortField is case-insensitive and accepts "-" as a word separator.
func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), "-", "_"))
	for _, known := range SortFields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

func OrderOf(ascending bool) SortOrder {
	if ascending {
		return Ascending
	}
	return Descending
}

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Ascending:
		return Ascending, nil
	case Descending:
		return Descending, nil
	}
	return "", fmt.Errorf("sort order must be asc or desc, got %q", s)
}
