package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slot-wager-service/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer implements ports.EventPublisher over a Kafka topic. Events are
// keyed by player ID so every player's snapshots land on one partition in
// order.
type Producer struct {
	writer *kafka.Writer
	log    zerolog.Logger
}

// ProducerConfig holds Kafka producer configuration.
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// NewProducer creates a Kafka producer for wallet sync events.
func NewProducer(cfg ProducerConfig, log zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}

	return &Producer{
		writer: writer,
		log:    log.With().Str("component", "kafka-producer").Logger(),
	}
}

// Publish writes one wallet sync event.
func (p *Producer) Publish(ctx context.Context, event domain.WalletSyncEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal wallet sync event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.PlayerID.String()),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write wallet sync event: %w", err)
	}

	p.log.Debug().
		Str("player_id", event.PlayerID.String()).
		Int64("version", event.Version).
		Msg("wallet sync event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.log.Error().Err(err).Msg("error closing kafka writer")
		return err
	}
	return nil
}
