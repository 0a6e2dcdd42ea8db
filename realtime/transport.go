// Package realtime abstracts the hosted pub/sub vendor behind a small
// transport interface. The lifecycle core publishes through it and never
// depends on delivery: the durable store is the source of truth and clients
// reconcile by refetching the lobby.
package realtime

import "context"

// Transport is the process-wide realtime client. Constructed once at start
// and injected; never reached through a global.
type Transport interface {
	Channel(name string) Channel
	Close() error
}

// Channel is a named broadcast stream.
type Channel interface {
	// Publish sends a fire-and-forget event. No delivery acknowledgment is
	// expected by callers.
	Publish(ctx context.Context, event string, payload any) error
	Presence() Presence
}

// Presence is the soft online-membership primitive layered on a channel. It
// carries no consistency guarantee and must never gate a lifecycle
// transition.
type Presence interface {
	Enter(ctx context.Context, clientID string) error
	Leave(ctx context.Context, clientID string) error
	Get(ctx context.Context) ([]string, error)
}

// LobbyChannelName names the shared per-game broadcast channel.
func LobbyChannelName(gameID string) string {
	return "game-" + gameID + "-lobby"
}

// PrivateChannelName names a participant's private notification channel.
func PrivateChannelName(identity string) string {
	return "private-user-" + identity
}
