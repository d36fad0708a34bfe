package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"bvest/internal/models"

	"github.com/segmentio/kafka-go"
)

// DefaultTopic is the notification event stream consumed by the push
// and email delivery workers.
const DefaultTopic = "bvest.notifications"

// KafkaDispatcher publishes notifications to a Kafka topic, keyed by
// target user id so one user's events stay ordered.
type KafkaDispatcher struct {
	writer *kafka.Writer
}

// NewKafkaDispatcher creates a dispatcher publishing to the given
// brokers and topic.
func NewKafkaDispatcher(brokers []string, topic string) *KafkaDispatcher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaDispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (d *KafkaDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(n.UserID), 10)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
