package events

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/todoflow-labs/todo-client/internal/controller"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

const (
	StreamName = "todo_client_events"
	Subject    = "todo.client.events"

	queueSize = 64
)

// StateEvent is the wire form of a controller transition.
type StateEvent struct {
	Kind      string    `json:"kind"`
	Page      int       `json:"page"`
	SortField string    `json:"sortField"`
	SortOrder string    `json:"sortOrder"`
	ItemCount int       `json:"itemCount"`
	Busy      bool      `json:"busy"`
	Status    string    `json:"status"`
	LastError string    `json:"lastError,omitempty"`
	At        time.Time `json:"at"`
}

func FromEvent(ev controller.Event, at time.Time) StateEvent {
	return StateEvent{
		Kind:      string(ev.Kind),
		Page:      ev.State.Page,
		SortField: string(ev.State.SortField),
		SortOrder: string(ev.State.SortOrder()),
		ItemCount: len(ev.State.Items),
		Busy:      ev.State.Busy,
		Status:    string(ev.State.Status()),
		LastError: ev.State.LastError,
		At:        at.UTC(),
	}
}

// Publisher forwards controller events to JetStream. Observe never blocks the
// controller: events are queued and published from a single goroutine, and
// dropped when the queue is full.
type Publisher struct {
	js     nats.JetStreamContext
	logger *logging.Logger
	queue  chan StateEvent
	done   chan struct{}
	once   sync.Once
}

// EnsureStream creates the event stream if it does not exist yet.
func EnsureStream(js nats.JetStreamContext) error {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{Subject},
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) && !strings.Contains(err.Error(), "file already in use") {
		return err
	}
	return nil
}

func NewPublisher(js nats.JetStreamContext, logger *logging.Logger) *Publisher {
	p := &Publisher{
		js:     js,
		logger: logger,
		queue:  make(chan StateEvent, queueSize),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Observe is a controller observer.
func (p *Publisher) Observe(ev controller.Event) {
	select {
	case p.queue <- FromEvent(ev, time.Now()):
	default:
		p.logger.Warn().Str("kind", string(ev.Kind)).Msg("event queue full, dropping event")
	}
}

// Close publishes what is queued and stops the publisher. Observe must not be
// called after Close.
func (p *Publisher) Close() {
	p.once.Do(func() {
		close(p.queue)
		<-p.done
	})
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		data, _ := json.Marshal(ev)
		if _, err := p.js.Publish(Subject, data); err != nil {
			p.logger.Error().Err(err).Str("kind", ev.Kind).Msg("failed to publish state event")
			continue
		}
		p.logger.Debug().Str("kind", ev.Kind).Msg("state event published")
	}
}
