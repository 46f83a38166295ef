package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/todoflow-labs/todo-client/internal/config"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

// Run serves an in-memory todo backend until the listener fails.
func Run() {
	// Load configuration
	cfg, err := config.LoadFakeAPI()
	if err != nil {
		logging.Console("info").Fatal().Err(err).Msg("failed to load config")
	}

	logger := logging.Console(cfg.LogLevel).With().Str("service", "fakeapi").Logger()

	r := NewRouter(NewStore(), &logger)

	logger.Info().Msgf("fakeapi listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal().Err(err).Msg("HTTP server failed")
	}
}

// NewRouter exposes store over the todo REST contract.
func NewRouter(store *Store, logger *logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(jsonContentType)

	// Routes
	r.Get("/todos", ListTodos(store, logger))
	r.Post("/todos", CreateTodo(store, logger))
	r.Get("/todos/{id}", GetTodo(store, logger))
	r.Put("/todos/{id}", UpdateTodo(store, logger))
	r.Delete("/todos/{id}", DeleteTodo(store, logger))
	r.Put("/todos/{id}/toggle", ToggleTodo(store, logger))

	// Error handlers
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
		logger.Warn().Str("path", r.URL.Path).Msg("404 not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logger.Warn().Str("path", r.URL.Path).Msg("405 method not allowed")
	})

	return r
}

func ListTodos(store *Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		field := dto.SortByID
		if raw := q.Get("sortField"); raw != "" {
			f, err := dto.ParseSortField(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			field = f
		}
		order := dto.Ascending
		if raw := q.Get("sortOrder"); raw != "" {
			o, err := dto.ParseSortOrder(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			order = o
		}
		page := 1
		if raw := q.Get("page"); raw != "" {
			p, err := strconv.Atoi(raw)
			if err != nil || p < 1 {
				writeError(w, http.StatusBadRequest, "page must be a positive integer")
				return
			}
			page = p
		}

		todos, err := store.List(field, order, page)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Debug().Str("sortField", string(field)).Str("sortOrder", string(order)).Int("page", page).Int("count", len(todos)).Msg("listed todos")
		writeJSON(w, http.StatusOK, todos)
	}
}

func GetTodo(store *Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(w, r)
		if !ok {
			return
		}
		todo, err := store.Get(id)
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, todo)
	}
}

func CreateTodo(store *Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var todo dto.Todo
		if err := json.NewDecoder(r.Body).Decode(&todo); err != nil {
			logger.Error().Err(err).Msg("invalid create payload")
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		if todo.HasID() {
			writeError(w, http.StatusBadRequest, "id is assigned by the server")
			return
		}
		created, err := store.Create(todo)
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}
		logger.Debug().Int64("id", created.ID).Msg("created todo")
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTodo(store *Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(w, r)
		if !ok {
			return
		}
		var todo dto.Todo
		if err := json.NewDecoder(r.Body).Decode(&todo); err != nil {
			logger.Error().Err(err).Msg("invalid update payload")
			writeError(w, http.StatusBadRequest, "invalid payload")
			return
		}
		todo.ID = id
		updated, err := store.Update(todo)
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTodo(store *Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(w, r)
		if !ok {
			return
		}
		if err := store.Delete(id); err != nil {
			writeStoreError(w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ToggleTodo(store *Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(w, r)
		if !ok {
			return
		}
		toggled, err := store.Toggle(id)
		if err != nil {
			writeStoreError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toggled)
	}
}

func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "invalid todo id")
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, logger *logging.Logger, err error) {
	var verr *dto.ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	default:
		logger.Error().Err(err).Msg("store failure")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Forces JSON Content-Type for all responses
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Writes a structured JSON error
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
