// Package notification delivers marketplace events to users. Delivery
// is best-effort: a failed dispatch is logged and never propagated back
// into the state change that produced the event.
package notification

import (
	"context"
	"log"
	"strings"

	"bvest/internal/config"
	"bvest/internal/models"
)

// Dispatcher hands a typed event to the delivery transport.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification) error
}

// LogDispatcher writes notifications to the application log. Used in
// development and as the fallback when no broker is configured.
type LogDispatcher struct{}

// NewLogDispatcher creates a log-only dispatcher.
func NewLogDispatcher() *LogDispatcher { return &LogDispatcher{} }

func (d *LogDispatcher) Dispatch(ctx context.Context, n models.Notification) error {
	log.Printf("Notify user %d [%s/%s]: %s: %s", n.UserID, n.Event, n.Priority, n.Title, n.Body)
	return nil
}

// NewDispatcherFromEnv returns a kafka-backed dispatcher when
// KAFKA_BROKERS is set, and the log-only fallback otherwise.
func NewDispatcherFromEnv() Dispatcher {
	brokers := config.GetEnv("KAFKA_BROKERS", "")
	if brokers == "" {
		return NewLogDispatcher()
	}
	topic := config.GetEnv("KAFKA_NOTIFICATIONS_TOPIC", DefaultTopic)
	return NewKafkaDispatcher(strings.Split(brokers, ","), topic)
}
