package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hanish-rishen/RideShare/internal/models"
)

// Event mirrors request lifecycle onto the stream the geo consumer reads.
type Event struct {
	Type    string             `json:"type"` // "created" or "withdrawn"
	Request models.RideRequest `json:"request"`
}

const (
	EventCreated   = "created"
	EventWithdrawn = "withdrawn"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaProducer{writer: w}
}

func (k *KafkaProducer) PublishCreated(r models.RideRequest) error {
	return k.publish(Event{Type: EventCreated, Request: r})
}

func (k *KafkaProducer) PublishWithdrawn(r models.RideRequest) error {
	return k.publish(Event{Type: EventWithdrawn, Request: r})
}

func (k *KafkaProducer) publish(ev Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(ev)
	return k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.Request.ID), Value: b})
}

func (k *KafkaProducer) Close() error {
	if k.writer == nil {
		return nil
	}
	return k.writer.Close()
}
