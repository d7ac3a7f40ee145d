package relay

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/domain/inventory"
	"github.com/Zhima-Mochi/minimarket/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minimarket/internal/domain/outbox"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSubscriber struct {
	handlers map[string]domoutbox.Handler
}

func (s *captureSubscriber) Subscribe(name string, h domoutbox.Handler) {
	if s.handlers == nil {
		s.handlers = map[string]domoutbox.Handler{}
	}
	s.handlers[name] = h
}

type flakySink struct {
	mu       sync.Mutex
	failures int
	sent     []Message
	calls    int
}

func (s *flakySink) Name() string { return "test" }

func (s *flakySink) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failures {
		return errors.New("broker down")
	}
	s.sent = append(s.sent, msg)
	return nil
}

func TestEncodeUsesAggregateKey(t *testing.T) {
	msg, err := Encode(inventory.NewStockAdjustedEvent("X", inventory.AdjustmentAdd, 3, 7))
	require.NoError(t, err)
	assert.Equal(t, "inventory.stock_adjusted", msg.Name)
	assert.Equal(t, "X", msg.Key)

	var env map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &env))
	assert.Equal(t, "inventory.stock_adjusted", env["event"])
	assert.NotNil(t, env["payload"])

	msg, err = Encode(order.OrderPlacedEvent{GroupID: "GRP-1"})
	require.NoError(t, err)
	assert.Equal(t, "GRP-1", msg.Key)
}

func TestWorkerRetriesThenDelivers(t *testing.T) {
	sub := &captureSubscriber{}
	sink := &flakySink{failures: 2}
	w := NewWorker(sub, sink, observability.Nop())
	w.backoff = time.Millisecond
	w.Start()

	h := sub.handlers[domoutbox.AllEvents]
	require.NotNil(t, h)
	require.NoError(t, h(context.Background(), order.OrderPlacedEvent{GroupID: "GRP-1"}))

	assert.Equal(t, 3, sink.calls)
	require.Len(t, sink.sent, 1)
	assert.Equal(t, "order.placed", sink.sent[0].Name)
}

func TestWorkerGivesUp(t *testing.T) {
	sub := &captureSubscriber{}
	sink := &flakySink{failures: 10}
	w := NewWorker(sub, sink, nil)
	w.backoff = time.Millisecond
	w.Start()

	err := sub.handlers[domoutbox.AllEvents](context.Background(), order.OrderPlacedEvent{GroupID: "GRP-1"})
	require.Error(t, err)
	assert.Equal(t, defaultRetries, sink.calls)
	assert.Empty(t, sink.sent)
}
