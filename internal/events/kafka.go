package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON, keyed by aggregate id so that events
// for one cart or item keep their order within a partition. Writes are
// asynchronous: Publish only queues the message and delivery failures are
// logged when the batch completes.
type KafkaPublisher struct {
	writer messageWriter
	logger *log.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *log.Logger) *KafkaPublisher {
	p := newKafkaPublisher(nil, logger)
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion:             p.completed,
	}
	return p
}

func newKafkaPublisher(w messageWriter, logger *log.Logger) *KafkaPublisher {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &KafkaPublisher{writer: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(e.AggregateID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}

// completed is the writer's batch callback.
func (p *KafkaPublisher) completed(msgs []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, m := range msgs {
		p.logger.Printf("events: deliver type=%s key=%s error=%v", eventType(m), m.Key, err)
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

// Close flushes queued messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
