package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaForwarder mirrors dispatched events onto a Kafka topic. Without
// brokers or a topic it does nothing.
type KafkaForwarder struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaForwarder(brokers []string, topic string, logger *zap.Logger) *KafkaForwarder {
	f := &KafkaForwarder{logger: logger}
	if len(brokers) == 0 || topic == "" {
		return f
	}
	f.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return f
}

// Enabled reports whether a writer is configured.
func (f *KafkaForwarder) Enabled() bool {
	return f != nil && f.writer != nil
}

// Register subscribes the forwarder to every event type.
func (f *KafkaForwarder) Register(d Dispatcher) {
	if !f.Enabled() {
		return
	}
	SubscribeAll(d, f.Handle)
}

// Handle writes one event keyed by ticket id so a ticket's events stay ordered.
func (f *KafkaForwarder) Handle(ctx context.Context, event Event) error {
	if !f.Enabled() {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.TicketID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := f.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event to kafka: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (f *KafkaForwarder) Close() error {
	if !f.Enabled() {
		return nil
	}
	return f.writer.Close()
}
