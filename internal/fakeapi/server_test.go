package fakeapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/fakeapi"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

func newRouter(t *testing.T) (*fakeapi.Store, http.Handler) {
	t.Helper()
	store := fakeapi.NewStore()
	store.SetClock(func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) })
	return store, fakeapi.NewRouter(store, logging.Nop())
}

func serve(h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return resp
}

func TestCreateAssignsID(t *testing.T) {
	_, h := newRouter(t)

	resp := serve(h, http.MethodPost, "/todos", dto.Todo{Title: "Test todo", Tags: []string{"Work"}})
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var created dto.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, []string{"Work"}, created.Tags)
	require.NotNil(t, created.CreatedDate)
	assert.Nil(t, created.CompletedDate)
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	_, h := newRouter(t)

	resp := serve(h, http.MethodPost, "/todos", dto.Todo{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "Title is required")
}

func TestListSortsAndPages(t *testing.T) {
	store, h := newRouter(t)
	for i := 0; i < 13; i++ {
		_, err := store.Create(dto.Todo{Title: fmt.Sprintf("todo %02d", i)})
		require.NoError(t, err)
	}

	resp := serve(h, http.MethodGet, "/todos?sortField=title&sortOrder=desc&page=1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var first []dto.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &first))
	require.Len(t, first, fakeapi.PageSize)
	assert.Equal(t, "todo 12", first[0].Title)

	resp = serve(h, http.MethodGet, "/todos?sortField=TITLE&sortOrder=desc&page=2", nil)
	var second []dto.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &second))
	require.Len(t, second, 3)
	assert.Equal(t, "todo 00", second[2].Title)

	resp = serve(h, http.MethodGet, "/todos?page=5", nil)
	assert.JSONEq(t, `[]`, resp.Body.String())
}

func TestListRejectsBadQuery(t *testing.T) {
	_, h := newRouter(t)

	for _, target := range []string{"/todos?sortOrder=up", "/todos?page=0", "/todos?sortField=priority"} {
		resp := serve(h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, resp.Code, target)
	}
}

func TestToggleSetsAndClearsCompletedDate(t *testing.T) {
	store, h := newRouter(t)
	created, err := store.Create(dto.Todo{Title: "A"})
	require.NoError(t, err)

	resp := serve(h, http.MethodPut, fmt.Sprintf("/todos/%d/toggle", created.ID), struct{}{})
	require.Equal(t, http.StatusOK, resp.Code)
	var toggled dto.Todo
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggled))
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.CompletedDate)

	resp = serve(h, http.MethodPut, fmt.Sprintf("/todos/%d/toggle", created.ID), struct{}{})
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &toggled))
	assert.False(t, toggled.Completed)
	assert.Nil(t, toggled.CompletedDate)
}

func TestUpdateAndDeleteUnknownID(t *testing.T) {
	_, h := newRouter(t)

	resp := serve(h, http.MethodPut, "/todos/42", dto.Todo{ID: 42, Title: "x"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = serve(h, http.MethodDelete, "/todos/42", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = serve(h, http.MethodGet, "/todos/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUnknownRoute(t *testing.T) {
	_, h := newRouter(t)

	resp := serve(h, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, resp.Body.String())

	resp = serve(h, http.MethodPatch, "/todos", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestRequestsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := middleware.DefaultLogger
	middleware.DefaultLogger = middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.New(&buf, "", 0), NoColor: true})
	defer func() { middleware.DefaultLogger = prev }()

	_, h := newRouter(t)
	resp := serve(h, http.MethodGet, "/todos?sortField=TITLE", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, buf.String(), `"GET`)
	assert.Contains(t, buf.String(), "/todos?sortField=TITLE")
	assert.Contains(t, buf.String(), " 200 ")
}
