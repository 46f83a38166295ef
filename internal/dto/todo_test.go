package dto_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/dto"
)

func TestTodoValidate(t *testing.T) {
	cases := []struct {
		name  string
		title string
		ok    bool
	}{
		{"plain", "Buy milk", true},
		{"blank", "   ", false},
		{"empty", "", false},
		{"at limit", strings.Repeat("a", dto.TitleMaxLen), true},
		{"over limit", strings.Repeat("a", dto.TitleMaxLen+1), false},
		{"multibyte at limit", strings.Repeat("é", dto.TitleMaxLen), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := dto.Todo{Title: tc.title}.Validate()
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var verr *dto.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "title", verr.Field)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestTodoCloneIsDeep(t *testing.T) {
	orig := dto.Todo{
		ID:          1,
		Title:       "A",
		Tags:        []string{"Work"},
		CreatedDate: dto.NewTimestamp(time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)),
	}
	c := orig.Clone()
	c.Tags[0] = "Yoga"
	c.CreatedDate.Time = time.Time{}

	assert.Equal(t, "Work", orig.Tags[0])
	assert.False(t, orig.CreatedDate.IsZero())
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"Yoga", "GYM"}, dto.ParseTags(" Yoga, ,GYM ,"))
	assert.Equal(t, []string{}, dto.ParseTags(""))
	assert.Equal(t, "Yoga, GYM", dto.JoinTags([]string{"Yoga", "GYM"}))
}

func TestTimestampFormats(t *testing.T) {
	want := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	inputs := map[string]string{
		"rfc3339":      `"2024-05-06T07:08:09Z"`,
		"offset":       `"2024-05-06T09:08:09+02:00"`,
		"local":        `"2024-05-06T07:08:09"`,
		"epoch millis": `1714979289000`,
	}
	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			var ts dto.Timestamp
			require.NoError(t, json.Unmarshal([]byte(raw), &ts))
			assert.True(t, want.Equal(ts.Time), "got %s", ts.Time)
		})
	}
}

func TestTodoJSONNullDates(t *testing.T) {
	var todo dto.Todo
	err := json.Unmarshal([]byte(`{"id":3,"title":"x","completed":true,"createdDate":null,"completedDate":"2024-01-01T00:00:00","tags":["a"]}`), &todo)
	require.NoError(t, err)

	assert.Equal(t, int64(3), todo.ID)
	assert.Nil(t, todo.CreatedDate)
	require.NotNil(t, todo.CompletedDate)
	assert.Equal(t, 2024, todo.CompletedDate.Year())

	out, err := json.Marshal(dto.Todo{Title: "new"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"id"`)
}

func TestParseSort(t *testing.T) {
	f, err := dto.ParseSortField("created-date")
	require.NoError(t, err)
	assert.Equal(t, dto.SortByCreatedDate, f)

	_, err = dto.ParseSortField("priority")
	assert.Error(t, err)

	o, err := dto.ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, dto.Descending, o)
	assert.Equal(t, dto.Ascending, dto.OrderOf(true))
}
