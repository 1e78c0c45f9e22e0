package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// EventHandler decodes booking events and passes them to handle. Undecodable
// messages are logged and skipped; errors from handle are logged and the
// message is skipped too, so one bad booking cannot wedge the partition.
func EventHandler(log logger.Logger, handle func(context.Context, BookingEvent) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode booking event", err, "offset", msg.Offset, "partition", msg.Partition)
			return nil
		}
		if err := handle(ctx, event); err != nil {
			log.Error("handle booking event", err, "type", event.Type, "booking_id", event.BookingID)
		}
		return nil
	}
}
