package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/storefront/internal/core/domain"
)

const orderPlacedEvent = "order.placed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier publishes placed orders to a topic, keyed by tenant so one
// tenant's orders stay ordered within a partition.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

type orderPlacedPayload struct {
	OrderNumber string            `json:"orderNumber"`
	ClientID    string            `json:"clientId"`
	ClientCode  string            `json:"clientCode"`
	Customer    domain.Customer   `json:"customer"`
	Items       []domain.CartLine `json:"items"`
	Total       string            `json:"total"`
	Message     string            `json:"message"`
	DeepLink    string            `json:"deepLink,omitempty"`
	PlacedAt    time.Time         `json:"placedAt"`
}

func (k *KafkaNotifier) Notify(ctx context.Context, n domain.Notification) error {
	payload, err := json.Marshal(orderPlacedPayload{
		OrderNumber: n.OrderNumber,
		ClientID:    n.Tenant.ID,
		ClientCode:  n.Tenant.Code,
		Customer:    n.Customer,
		Items:       n.Lines,
		Total:       domain.SumTotal(n.Lines).StringFixed(2),
		Message:     n.Message,
		DeepLink:    n.DeepLink,
		PlacedAt:    n.PlacedAt,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.Tenant.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(orderPlacedEvent)},
			{Key: "session_id", Value: []byte(n.SessionID)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
