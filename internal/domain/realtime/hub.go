// Package realtime fans whole-row project changes out to subscribers. There
// is no merge logic anywhere in this path: events carry full rows and the
// last write wins.
package realtime

import (
	"sync"
	"time"

	"agency-budget-go/internal/domain/project"
)

type EventType string

const (
	EventTypeUpsert EventType = "upsert"
	EventTypeDelete EventType = "delete"
)

// Event is one whole-row change notification. Project is nil for deletes.
type Event struct {
	Type      EventType       `json:"type"`
	ProjectID string          `json:"project_id"`
	Project   *project.Record `json:"project,omitempty"`
	At        time.Time       `json:"at"`
}

type Subscriber struct {
	ch chan Event
}

// Events is the subscriber's receive channel. It is closed on unsubscribe.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

type Hub struct {
	buffer int

	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

const DefaultSubscriberBuffer = 16

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[*Subscriber]struct{}),
	}
}

func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
	h.mu.Unlock()
}

// Publish delivers the event to every subscriber without blocking. A
// subscriber whose buffer is full misses the event; clients are expected to
// re-list on reconnect.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- event:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ProjectUpserted and ProjectDeleted make the hub a project.Publisher.

func (h *Hub) ProjectUpserted(p project.Project) {
	record := p.Record()
	h.Publish(Event{
		Type:      EventTypeUpsert,
		ProjectID: p.ID,
		Project:   &record,
		At:        time.Now().UTC(),
	})
}

func (h *Hub) ProjectDeleted(id string) {
	h.Publish(Event{
		Type:      EventTypeDelete,
		ProjectID: id,
		At:        time.Now().UTC(),
	})
}

// Apply folds one inbound event into a project list, last write wins at
// whole-row granularity: an upsert replaces the row outright, a delete
// removes it, and unknown ids on delete are a no-op.
func Apply(list []project.Project, event Event) []project.Project {
	switch event.Type {
	case EventTypeUpsert:
		if event.Project == nil {
			return list
		}
		incoming := event.Project.Project()
		for i := range list {
			if list[i].ID == incoming.ID {
				list[i] = incoming
				return list
			}
		}
		return append(list, incoming)
	case EventTypeDelete:
		for i := range list {
			if list[i].ID == event.ProjectID {
				return append(list[:i], list[i+1:]...)
			}
		}
	}
	return list
}
