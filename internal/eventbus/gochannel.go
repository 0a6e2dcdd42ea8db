package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// NewInMemoryEventBus returns a process-local bus. Used by tests and by the
// serve path when NATS is not configured.
func NewInMemoryEventBus(logger watermill.LoggerAdapter) EventBus {
	return gochannel.NewGoChannel(gochannel.Config{}, logger)
}
