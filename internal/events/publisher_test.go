package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/controller"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/events"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

func setupEmbeddedNATSServer(t *testing.T) (*server.Server, nats.JetStreamContext, *nats.Conn) {
	opts := &server.Options{
		JetStream: true,
		StoreDir:  t.TempDir(),
		Port:      -1,
		NoLog:     true,
		NoSigs:    true,
	}
	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()
	if !srv.ReadyForConnections(10 * time.Second) {
		t.Fatal("NATS server not ready in time")
	}

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)

	js, err := nc.JetStream()
	require.NoError(t, err)

	require.NoError(t, events.EnsureStream(js))
	// a second call must tolerate the existing stream
	require.NoError(t, events.EnsureStream(js))

	return srv, js, nc
}

type pageGateway struct{ todos []dto.Todo }

func (g pageGateway) List(context.Context, dto.SortField, dto.SortOrder, int) ([]dto.Todo, error) {
	return g.todos, nil
}
func (g pageGateway) Create(_ context.Context, t dto.Todo) (dto.Todo, error) { return t, nil }
func (g pageGateway) Update(_ context.Context, t dto.Todo) (dto.Todo, error) { return t, nil }
func (g pageGateway) Delete(context.Context, int64) error                    { return nil }
func (g pageGateway) ToggleStatus(_ context.Context, id int64) (dto.Todo, error) {
	return dto.Todo{ID: id, Title: "x", Completed: true}, nil
}

func TestPublisherForwardsControllerEvents(t *testing.T) {
	srv, js, nc := setupEmbeddedNATSServer(t)
	defer srv.Shutdown()
	defer nc.Close()

	pub := events.NewPublisher(js, logging.Nop())
	ctrl := controller.New(pageGateway{todos: []dto.Todo{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}}, logging.Nop())
	ctrl.Subscribe(pub.Observe)

	require.NoError(t, ctrl.ChangeSort(context.Background(), dto.SortByTitle))
	pub.Close()

	sub, err := js.PullSubscribe(events.Subject, "test-durable")
	require.NoError(t, err)
	msgs, err := sub.Fetch(2, nats.MaxWait(time.Second))
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	var loading, loaded events.StateEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &loading))
	require.NoError(t, json.Unmarshal(msgs[1].Data, &loaded))

	assert.Equal(t, string(controller.EventLoading), loading.Kind)
	assert.True(t, loading.Busy)
	assert.Equal(t, "loading", loading.Status)

	assert.Equal(t, string(controller.EventLoaded), loaded.Kind)
	assert.Equal(t, "TITLE", loaded.SortField)
	assert.Equal(t, "asc", loaded.SortOrder)
	assert.Equal(t, 2, loaded.ItemCount)
	assert.Equal(t, 1, loaded.Page)
	assert.False(t, loaded.At.IsZero())
}

func TestFromEventCarriesError(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ev := controller.Event{
		Kind: controller.EventFailed,
		State: controller.ViewState{
			Page:          2,
			SortField:     dto.SortByCompleted,
			SortAscending: false,
			LastError:     "Failed to load todos (status 500)",
		},
	}

	got := events.FromEvent(ev, at)
	assert.Equal(t, "failed", got.Kind)
	assert.Equal(t, "error", got.Status)
	assert.Equal(t, "desc", got.SortOrder)
	assert.Equal(t, "Failed to load todos (status 500)", got.LastError)
	assert.Equal(t, at, got.At)
}
