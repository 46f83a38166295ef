package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/dto"
)

func TestFormRoundTrip(t *testing.T) {
	created := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	done := dto.NewTimestamp(created.Add(time.Hour))
	todo := dto.Todo{
		ID:            7,
		Title:         "Stretch",
		Description:   "10 minutes",
		Completed:     true,
		CreatedDate:   dto.NewTimestamp(created),
		CompletedDate: done,
		Tags:          []string{"Yoga", "Study"},
	}

	f := dto.FormFromTodo(todo)
	assert.Equal(t, "2024-03-01", f.CreatedDate)
	assert.Equal(t, "14:30", f.CreatedTime)
	assert.Equal(t, "Yoga, Study", f.Tags)

	back, err := f.ToTodo()
	require.NoError(t, err)
	assert.Equal(t, todo.ID, back.ID)
	assert.Equal(t, todo.Tags, back.Tags)
	assert.True(t, created.Equal(back.CreatedDate.Time))
	require.NotNil(t, back.CompletedDate)
	assert.True(t, done.Equal(back.CompletedDate.Time))
}

func TestFormDateWithoutTime(t *testing.T) {
	back, err := dto.TodoForm{Title: "x", CreatedDate: "2024-03-01"}.ToTodo()
	require.NoError(t, err)
	assert.Equal(t, 0, back.CreatedDate.Hour())
}

func TestFormValidation(t *testing.T) {
	cases := map[string]dto.TodoForm{
		"blank title":       {Title: "  "},
		"time without date": {Title: "x", CreatedTime: "10:00"},
		"bad date":          {Title: "x", CreatedDate: "01/03/2024"},
		"bad time":          {Title: "x", CreatedDate: "2024-03-01", CreatedTime: "25:99"},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			var verr *dto.ValidationError
			assert.ErrorAs(t, f.Validate(), &verr)
		})
	}
}

func TestFormToggleTag(t *testing.T) {
	f := dto.TodoForm{Tags: "Work"}

	f.ToggleTag("Yoga")
	assert.Equal(t, "Work, Yoga", f.Tags)
	assert.True(t, f.HasTag("Yoga"))

	f.ToggleTag("Work")
	assert.Equal(t, "Yoga", f.Tags)
	assert.False(t, f.HasTag("Work"))
}
