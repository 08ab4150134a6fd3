package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bx-pool/internal/event"
)

func TestHubWithoutClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	bus := event.NewBus()
	h.Subscribe(bus)

	bus.Publish(event.EventBetWon, &event.Payload{Name: event.EventBetWon})
	bus.Close()

	require.Zero(t, h.Clients())
}
