package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHandler_DecodesAndDispatches(t *testing.T) {
	event := BookingEvent{
		Type:          EventBookingPaid,
		BookingID:     11,
		TransactionID: "TXN-1-1",
		UserID:        7,
		Status:        "paid",
		Price:         2520,
		OccurredAt:    time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var got BookingEvent
	h := EventHandler(logger.Discard(), func(_ context.Context, e BookingEvent) error {
		got = e
		return nil
	})

	require.NoError(t, h(context.Background(), kafka.Message{Value: payload}))
	assert.Equal(t, event, got)
}

func TestEventHandler_SkipsBadMessages(t *testing.T) {
	calls := 0
	h := EventHandler(logger.Discard(), func(context.Context, BookingEvent) error {
		calls++
		return errors.New("boom")
	})

	assert.NoError(t, h(context.Background(), kafka.Message{Value: []byte("not json")}))
	assert.Equal(t, 0, calls)

	assert.NoError(t, h(context.Background(), kafka.Message{Value: []byte(`{"type":"booking_paid","booking_id":1}`)}))
	assert.Equal(t, 1, calls)
}

func TestConsumer_CloseNil(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
}
