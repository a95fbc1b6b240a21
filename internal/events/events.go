// Package events publishes project lifecycle events to NATS.
//
// Each successful mutation produces one Event, published as JSON to
//
//	{prefix}.{project_id}.{action}
//
// where action is one of created, updated, deleted, status or assigned.
// Subscribers such as the dashboard can follow "projects.>" to stay in sync
// without polling the data file.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// Action identifies the kind of mutation.
type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionStatus   Action = "status"
	ActionAssigned Action = "assigned"
)

// Event describes one applied mutation.
type Event struct {
	ID         string           `json:"id"`
	Action     Action           `json:"action"`
	ProjectID  int              `json:"project_id"`
	Project    *project.Project `json:"project,omitempty"` // state after the mutation, nil on delete
	Field      string           `json:"field,omitempty"`   // set for updated
	ChatID     string           `json:"chat_id,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(action Action, id int, p *project.Project) Event {
	return Event{
		ID:         uuid.New().String(),
		Action:     action,
		ProjectID:  id,
		Project:    p,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
	owned  bool
}

// NewNATSPublisher wraps an existing connection. The caller keeps ownership.
func NewNATSPublisher(nc *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: prefix}
}

// Connect dials url and returns a publisher that closes the connection on Close.
func Connect(url, token, prefix string) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name("impactd"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1 * time.Second),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{nc: nc, prefix: prefix, owned: true}, nil
}

// Subject returns the subject an event is published on.
func (p *NATSPublisher) Subject(ev Event) string {
	return Subject(p.prefix, ev.ProjectID, ev.Action)
}

// Subject formats {prefix}.{id}.{action}.
func Subject(prefix string, id int, action Action) string {
	return fmt.Sprintf("%s.%d.%s", prefix, id, action)
}

// Publish marshals ev and publishes it.
func (p *NATSPublisher) Publish(_ context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(ev), data); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Action, err)
	}
	return nil
}

// Close drains the connection if the publisher opened it.
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	return p.nc.Drain()
}
