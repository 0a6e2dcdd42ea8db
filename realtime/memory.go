package realtime

import (
	"context"
	"sync"
)

// PublishedEvent records one Publish call on the in-memory transport.
type PublishedEvent struct {
	Channel string
	Event   string
	Payload any
}

// InMemoryTransport is a Transport for tests and single-process development.
type InMemoryTransport struct {
	mu        sync.Mutex
	published []PublishedEvent
	presence  map[string]map[string]struct{}

	// FailChannels lists channel names whose publishes return an error, for
	// exercising the fan-out's swallow path.
	FailChannels map[string]error
}

// NewInMemoryTransport creates an empty in-memory transport.
func NewInMemoryTransport() *InMemoryTransport {
	return &InMemoryTransport{
		presence:     make(map[string]map[string]struct{}),
		FailChannels: make(map[string]error),
	}
}

func (t *InMemoryTransport) Channel(name string) Channel {
	return &memChannel{transport: t, name: name}
}

func (t *InMemoryTransport) Close() error { return nil }

// Published returns a copy of every event published so far.
func (t *InMemoryTransport) Published() []PublishedEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PublishedEvent, len(t.published))
	copy(out, t.published)
	return out
}

// PublishedTo filters published events by channel name.
func (t *InMemoryTransport) PublishedTo(channel string) []PublishedEvent {
	var out []PublishedEvent
	for _, e := range t.Published() {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

type memChannel struct {
	transport *InMemoryTransport
	name      string
}

func (c *memChannel) Publish(_ context.Context, event string, payload any) error {
	c.transport.mu.Lock()
	defer c.transport.mu.Unlock()
	if err, ok := c.transport.FailChannels[c.name]; ok {
		return err
	}
	c.transport.published = append(c.transport.published, PublishedEvent{
		Channel: c.name,
		Event:   event,
		Payload: payload,
	})
	return nil
}

func (c *memChannel) Presence() Presence {
	return &memPresence{transport: c.transport, channel: c.name}
}

type memPresence struct {
	transport *InMemoryTransport
	channel   string
}

func (p *memPresence) Enter(_ context.Context, clientID string) error {
	p.transport.mu.Lock()
	defer p.transport.mu.Unlock()
	members, ok := p.transport.presence[p.channel]
	if !ok {
		members = make(map[string]struct{})
		p.transport.presence[p.channel] = members
	}
	members[clientID] = struct{}{}
	return nil
}

func (p *memPresence) Leave(_ context.Context, clientID string) error {
	p.transport.mu.Lock()
	defer p.transport.mu.Unlock()
	if members, ok := p.transport.presence[p.channel]; ok {
		delete(members, clientID)
	}
	return nil
}

func (p *memPresence) Get(context.Context) ([]string, error) {
	p.transport.mu.Lock()
	defer p.transport.mu.Unlock()
	members := p.transport.presence[p.channel]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out, nil
}
