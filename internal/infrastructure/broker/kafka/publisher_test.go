package kafka

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minimarket/internal/application/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCarriesKeyAndEventHeader(t *testing.T) {
	rec := record("minimarket.events", relay.Message{Name: "order.placed", Key: "GRP-1", Body: []byte(`{}`)})

	assert.Equal(t, "minimarket.events", rec.Topic)
	assert.Equal(t, []byte("GRP-1"), rec.Key)
	require.NotEmpty(t, rec.Headers)
	assert.Equal(t, "event", rec.Headers[0].Key)
	assert.Equal(t, []byte("order.placed"), rec.Headers[0].Value)
}

func TestPublisherSend(t *testing.T) {
	brokers := os.Getenv("MINIMARKET_TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("MINIMARKET_TEST_KAFKA_BROKERS not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, err := NewPublisher(ctx, strings.Split(brokers, ","), "minimarket.test", "minimarket-test")
	if err != nil {
		t.Skipf("kafka unavailable: %v", err)
	}
	defer pub.Close()

	require.NoError(t, pub.Send(ctx, relay.Message{Name: "order.placed", Key: "GRP-1", Body: []byte(`{}`)}))
}
