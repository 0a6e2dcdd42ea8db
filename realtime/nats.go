package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	nc "github.com/nats-io/nats.go"
)

// natsTransport maps realtime channels onto NATS core subjects. Channel
// events go to realtime.<channel>; presence changes to
// realtime.<channel>.presence.
type natsTransport struct {
	conn *nc.Conn

	mu       sync.Mutex
	presence map[string]map[string]struct{} // channel -> clientIDs
}

// envelope is the wire shape for a channel event.
type envelope struct {
	Event       string          `json:"event"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"publishedAt"`
}

// NewNatsTransport connects to NATS and returns a Transport over it.
func NewNatsTransport(natsURL string) (Transport, error) {
	conn, err := nc.Connect(natsURL,
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30*time.Second),
		nc.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect realtime transport: %w", err)
	}
	return &natsTransport{
		conn:     conn,
		presence: make(map[string]map[string]struct{}),
	}, nil
}

func (t *natsTransport) Channel(name string) Channel {
	return &natsChannel{transport: t, name: name}
}

func (t *natsTransport) Close() error {
	t.conn.Close()
	return nil
}

type natsChannel struct {
	transport *natsTransport
	name      string
}

func (c *natsChannel) Publish(_ context.Context, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %q: %w", event, err)
	}
	env, err := json.Marshal(envelope{
		Event:       event,
		Payload:     body,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope for %q: %w", event, err)
	}
	if err := c.transport.conn.Publish(subjectFor(c.name), env); err != nil {
		return fmt.Errorf("failed to publish %q to %q: %w", event, c.name, err)
	}
	return nil
}

func (c *natsChannel) Presence() Presence {
	return &natsPresence{transport: c.transport, channel: c.name}
}

type natsPresence struct {
	transport *natsTransport
	channel   string
}

func (p *natsPresence) Enter(ctx context.Context, clientID string) error {
	p.transport.mu.Lock()
	members, ok := p.transport.presence[p.channel]
	if !ok {
		members = make(map[string]struct{})
		p.transport.presence[p.channel] = members
	}
	members[clientID] = struct{}{}
	p.transport.mu.Unlock()

	ch := &natsChannel{transport: p.transport, name: p.channel + ".presence"}
	return ch.Publish(ctx, "presence-enter", map[string]string{"clientId": clientID})
}

func (p *natsPresence) Leave(ctx context.Context, clientID string) error {
	p.transport.mu.Lock()
	if members, ok := p.transport.presence[p.channel]; ok {
		delete(members, clientID)
	}
	p.transport.mu.Unlock()

	ch := &natsChannel{transport: p.transport, name: p.channel + ".presence"}
	return ch.Publish(ctx, "presence-leave", map[string]string{"clientId": clientID})
}

func (p *natsPresence) Get(context.Context) ([]string, error) {
	p.transport.mu.Lock()
	defer p.transport.mu.Unlock()
	members := p.transport.presence[p.channel]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out, nil
}

// subjectFor converts a channel name into a NATS subject.
func subjectFor(channel string) string {
	return "realtime." + strings.ReplaceAll(channel, " ", "_")
}
