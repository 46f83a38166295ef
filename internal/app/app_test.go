package app

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/fakeapi"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

func TestRunFailsWithoutAPIURL(t *testing.T) {
	t.Setenv("TODO_API_URL", "")
	assert.Equal(t, 1, Run([]string{"ls"}))
}

func TestRunRejectsBadAPIURL(t *testing.T) {
	t.Setenv("TODO_API_URL", "ftp://example.com")
	assert.Equal(t, 1, Run([]string{"ls"}))
}

func TestRunDispatchesToCLI(t *testing.T) {
	store := fakeapi.NewStore()
	srv := httptest.NewServer(fakeapi.NewRouter(store, logging.Nop()))
	defer srv.Close()

	logFile := filepath.Join(t.TempDir(), "client.log")
	t.Setenv("TODO_API_URL", srv.URL)
	t.Setenv("LOG_FILE", logFile)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("NATS_URL", "")
	t.Setenv("METRICS_ADDR", "")

	require.Equal(t, 0, Run([]string{"add", "from", "app"}))
	require.Equal(t, 0, Run([]string{"ls"}))
	assert.Equal(t, 2, Run([]string{"done", "9"}))

	items, err := store.List(dto.SortByID, dto.Ascending, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "from app", items[0].Title)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"todo-client"`)
}
