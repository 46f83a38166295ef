package dto

import (
	"slices"
	"strings"
	"time"
)

const (
	formDateLayout = "2006-01-02"
	formTimeLayout = "15:04"
)

// CommonTags are offered as one-key toggles in the edit form.
var CommonTags = []string{"Yoga", "GYM", "Videogames", "Study", "Work"}

// TodoForm is the text-field view of a Todo used by edit forms.
type TodoForm struct {
	ID          int64
	Completed   bool
	Title       string
	Description string
	Tags        string
	CreatedDate string
	CreatedTime string

	// carried through untouched; only the server changes it
	completedDate *Timestamp
}

func FormFromTodo(t Todo) TodoForm {
	f := TodoForm{
		ID:          t.ID,
		Completed:   t.Completed,
		Title:       t.Title,
		Description: t.Description,
		Tags:        JoinTags(t.Tags),
	}
	if t.CreatedDate != nil && !t.CreatedDate.IsZero() {
		created := t.CreatedDate.UTC()
		f.CreatedDate = created.Format(formDateLayout)
		f.CreatedTime = created.Format(formTimeLayout)
	}
	if t.CompletedDate != nil {
		ts := *t.CompletedDate
		f.completedDate = &ts
	}
	return f
}

func (f TodoForm) Validate() error {
	_, err := f.ToTodo()
	return err
}

// ToTodo validates the form and converts it back to a Todo.
func (f TodoForm) ToTodo() (Todo, error) {
	t := Todo{
		ID:            f.ID,
		Title:         strings.TrimSpace(f.Title),
		Description:   strings.TrimSpace(f.Description),
		Completed:     f.Completed,
		Tags:          ParseTags(f.Tags),
		CompletedDate: f.completedDate,
	}
	if err := t.Validate(); err != nil {
		return Todo{}, err
	}

	date := strings.TrimSpace(f.CreatedDate)
	clock := strings.TrimSpace(f.CreatedTime)
	switch {
	case date == "" && clock != "":
		return Todo{}, &ValidationError{Field: "createdDate", Message: "Created date is required when a time is set"}
	case date != "":
		day, err := time.ParseInLocation(formDateLayout, date, time.UTC)
		if err != nil {
			return Todo{}, &ValidationError{Field: "createdDate", Message: "Created date must look like 2006-01-02"}
		}
		if clock != "" {
			hm, err := time.ParseInLocation(formTimeLayout, clock, time.UTC)
			if err != nil {
				return Todo{}, &ValidationError{Field: "createdTime", Message: "Created time must look like 15:04"}
			}
			day = day.Add(time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute)
		}
		t.CreatedDate = NewTimestamp(day)
	}
	return t, nil
}

// HasTag reports whether name is present in the comma-separated tags.
func (f TodoForm) HasTag(name string) bool {
	return slices.Contains(ParseTags(f.Tags), name)
}

// ToggleTag adds name to the tags, or removes it when already present.
func (f *TodoForm) ToggleTag(name string) {
	tags := ParseTags(f.Tags)
	if i := slices.Index(tags, name); i >= 0 {
		tags = slices.Delete(tags, i, i+1)
	} else {
		tags = append(tags, name)
	}
	f.Tags = JoinTags(tags)
}
