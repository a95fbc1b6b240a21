package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/impactd/internal/project"
)

// startTestNATSServer starts an embedded NATS server for testing.
func startTestNATSServer(t *testing.T, token string) *natsserver.Server {
	t.Helper()
	opts := &natsserver.Options{
		Host:          "127.0.0.1",
		Port:          -1,
		NoLog:         true,
		NoSigs:        true,
		Authorization: token,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()
	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func receive(t *testing.T, ch <-chan *nats.Msg) *nats.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
		return nil
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "projects.7.created", Subject("projects", 7, ActionCreated))
	assert.Equal(t, "impact.12.assigned", Subject("impact", 12, ActionAssigned))
}

func TestNewEvent(t *testing.T) {
	p := project.Project{Name: "Park"}
	ev := NewEvent(ActionCreated, 4, &p)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, ActionCreated, ev.Action)
	assert.Equal(t, 4, ev.ProjectID)
	assert.Equal(t, "Park", ev.Project.Name)
	assert.WithinDuration(t, time.Now(), ev.OccurredAt, time.Minute)
}

func TestNATSPublisher_Publish(t *testing.T) {
	server := startTestNATSServer(t, "")
	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	ch := make(chan *nats.Msg, 4)
	sub, err := nc.ChanSubscribe("projects.>", ch)
	require.NoError(t, err)
	defer sub.Unsubscribe()
	require.NoError(t, nc.Flush())

	pub := NewNATSPublisher(nc, "projects")
	p := project.Project{Name: "Park", Status: "New", Executor: "Unassigned"}
	ev := NewEvent(ActionCreated, 1, &p)
	ev.ChatID = "42"
	require.NoError(t, pub.Publish(context.Background(), ev))

	msg := receive(t, ch)
	assert.Equal(t, "projects.1.created", msg.Subject)

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, ActionCreated, got.Action)
	assert.Equal(t, "42", got.ChatID)
	require.NotNil(t, got.Project)
	assert.Equal(t, "Park", got.Project.Name)

	require.NoError(t, pub.Publish(context.Background(), NewEvent(ActionDeleted, 1, nil)))
	msg = receive(t, ch)
	assert.Equal(t, "projects.1.deleted", msg.Subject)
	assert.NotContains(t, string(msg.Data), `"project"`)

	// Borrowed connection stays open.
	require.NoError(t, pub.Close())
	assert.True(t, nc.IsConnected())
}

func TestConnect_WithToken(t *testing.T) {
	server := startTestNATSServer(t, "s3cret")

	sub, err := nats.Connect(server.ClientURL(), nats.Token("s3cret"))
	require.NoError(t, err)
	defer sub.Close()
	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe("projects.*.status", ch)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	pub, err := Connect(server.ClientURL(), "s3cret", "projects")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(context.Background(), NewEvent(ActionStatus, 3, &project.Project{Status: "Done"})))
	msg := receive(t, ch)
	assert.Equal(t, "projects.3.status", msg.Subject)

	require.NoError(t, pub.Close())
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), NewEvent(ActionCreated, 1, nil)))
	assert.NoError(t, p.Close())
}
