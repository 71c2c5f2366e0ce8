// Package events publishes accepted chat messages to Kafka for downstream
// consumers (search, notifications). Publishing is best effort.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dkeye/Kairos/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	w writer
}

// NewKafkaPublisher writes asynchronously; delivery errors are only logged.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Warn().Err(err).Str("module", "events").Int("count", len(msgs)).Msg("kafka delivery failed")
			}
		},
	}
	log.Info().Str("module", "events").Strs("brokers", brokers).Str("topic", topic).Msg("kafka publisher ready")
	return &KafkaPublisher{w: w}
}

// Record is the value written for each message. The Kafka key is the
// conversation or group id, so one chat stays in one partition.
type Record struct {
	MessageID      string           `json:"messageId"`
	ConversationID string           `json:"conversationId,omitempty"`
	GroupID        domain.GroupID   `json:"groupId,omitempty"`
	SenderID       domain.UserID    `json:"senderId"`
	Text           string           `json:"text,omitempty"`
	MediaType      domain.MediaType `json:"mediaType"`
	MediaRef       string           `json:"mediaRef,omitempty"`
	Timestamp      int64            `json:"timestamp"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, m *domain.Message) error {
	rec := Record{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		GroupID:        m.GroupID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		MediaType:      m.MediaType,
		MediaRef:       m.MediaRef,
		Timestamp:      m.CreatedAt.UnixMilli(),
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", m.ID, err)
	}
	key := m.ConversationID
	if m.GroupID != "" {
		key = string(m.GroupID)
	}
	return p.w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
