package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventOrderPlaced = "order.placed"

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaOrderPublisher submits orders as events instead of calling the orders
// endpoint. Messages are keyed by payment intent id so retries of the same
// order land on the same partition.
type KafkaOrderPublisher struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaOrderPublisher(topic string, log *zap.Logger, brokers ...string) *KafkaOrderPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
	return NewKafkaOrderPublisherWithWriter(w, log)
}

func NewKafkaOrderPublisherWithWriter(w MessageWriter, log *zap.Logger) *KafkaOrderPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaOrderPublisher{writer: w, log: log}
}

func (p *KafkaOrderPublisher) SubmitOrder(ctx context.Context, order domain.Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.PaymentIntentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return domain.Network("orders.publish", err)
	}

	p.log.Info("order published",
		zap.String("payment_intent_id", order.PaymentIntentID),
		zap.Int("lines", len(order.Items)))
	return nil
}

func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}
