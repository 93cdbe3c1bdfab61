package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/client-favorites/pkg/logger"
)

// Publisher wraps a Kafka sync producer. Publishing is best effort: broker
// failures are logged and never fail the request that triggered the event.
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{producer: producer, brokers: brokers}, nil
}

// ClientCreated publishes a client.created event
func (p *Publisher) ClientCreated(ctx context.Context, clientID uuid.UUID, email string) {
	p.publish(ctx, TopicClientEvents, "client_"+clientID.String(), EventTypeClientCreated, ClientEvent{
		EventID:   newEventID(),
		EventType: EventTypeClientCreated,
		ClientID:  clientID.String(),
		Email:     email,
		Timestamp: time.Now(),
	})
}

// ClientDeleted publishes a client.deleted event
func (p *Publisher) ClientDeleted(ctx context.Context, clientID uuid.UUID) {
	p.publish(ctx, TopicClientEvents, "client_"+clientID.String(), EventTypeClientDeleted, ClientEvent{
		EventID:   newEventID(),
		EventType: EventTypeClientDeleted,
		ClientID:  clientID.String(),
		Timestamp: time.Now(),
	})
}

// FavoriteAdded publishes a favorite.added event
func (p *Publisher) FavoriteAdded(ctx context.Context, clientID uuid.UUID, productID int64) {
	p.publish(ctx, TopicFavoriteEvents, "client_"+clientID.String(), EventTypeFavoriteAdded, FavoriteEvent{
		EventID:   newEventID(),
		EventType: EventTypeFavoriteAdded,
		ClientID:  clientID.String(),
		ProductID: productID,
		Timestamp: time.Now(),
	})
}

// FavoriteRemoved publishes a favorite.removed event
func (p *Publisher) FavoriteRemoved(ctx context.Context, clientID uuid.UUID, productID int64) {
	p.publish(ctx, TopicFavoriteEvents, "client_"+clientID.String(), EventTypeFavoriteRemoved, FavoriteEvent{
		EventID:   newEventID(),
		EventType: EventTypeFavoriteRemoved,
		ClientID:  clientID.String(),
		ProductID: productID,
		Timestamp: time.Now(),
	})
}

func (p *Publisher) publish(ctx context.Context, topic, key, eventType string, event interface{}) {
	tracer := otel.Tracer("kafka-publisher")
	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", eventType),
		),
	)
	defer span.End()

	payload, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		logger.Error(ctx).Err(err).Str("event_type", eventType).Msg("Failed to marshal event")
		return
	}

	// Inject trace context into message headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Error(ctx).
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Msg("Failed to publish event")
		return
	}

	logger.Info(ctx).
		Str("topic", topic).
		Str("event_type", eventType).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}
