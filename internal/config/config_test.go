package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/config"
)

func TestLoadRequiresAPIURL(t *testing.T) {
	t.Setenv("TODO_API_URL", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TODO_API_URL")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TODO_API_URL", "http://localhost:8080/todo/api")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HTTP_TIMEOUT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.HTTPTimeout)
}

func TestLoadTimeout(t *testing.T) {
	t.Setenv("TODO_API_URL", "http://localhost:8080/todo/api")
	t.Setenv("HTTP_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)

	t.Setenv("HTTP_TIMEOUT", "soon")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestLoadFakeAPI(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	_, err := config.LoadFakeAPI()
	assert.Error(t, err)

	t.Setenv("HTTP_ADDR", ":8080")
	cfg, err := config.LoadFakeAPI()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}
