package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"slot-wager-service/internal/core/domain"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// EventHandler processes one wallet sync event. A returned error leaves the
// message uncommitted so a later delivery retries it.
type EventHandler interface {
	Handle(ctx context.Context, event domain.WalletSyncEvent) error
}

// Consumer reads wallet sync events from Kafka and hands them to the handler.
type Consumer struct {
	reader  *kafka.Reader
	handler EventHandler
	log     zerolog.Logger
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// ConsumerConfig holds Kafka consumer configuration.
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewConsumer creates a Kafka consumer for wallet sync events.
func NewConsumer(cfg ConsumerConfig, handler EventHandler, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Consumer{
		reader:  reader,
		handler: handler,
		log:     log.With().Str("component", "kafka-consumer").Logger(),
	}
}

// Start begins the consume loop in a background goroutine.
func (c *Consumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.consume(ctx)
	c.log.Info().Msg("kafka consumer started")
}

// Stop cancels the loop and closes the reader.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()

	if err := c.reader.Close(); err != nil {
		c.log.Error().Err(err).Msg("error closing kafka reader")
		return err
	}
	c.log.Info().Msg("kafka consumer stopped")
	return nil
}

func (c *Consumer) consume(ctx context.Context) {
	defer c.wg.Done()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			c.log.Error().Err(err).Msg("error fetching message")
			time.Sleep(time.Second)
			continue
		}

		if err := c.handleMessage(ctx, msg); err != nil {
			c.log.Error().
				Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("error handling message")
			// Leave uncommitted; redelivery is safe because applies are
			// version-guarded.
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error().Err(err).Msg("error committing message")
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var event domain.WalletSyncEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// A malformed payload never becomes valid; log and drop it.
		c.log.Warn().Err(err).Int64("offset", msg.Offset).Msg("dropping malformed event")
		return nil
	}
	return c.handler.Handle(ctx, event)
}
