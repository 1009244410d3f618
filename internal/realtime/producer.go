package realtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"parkwise/pkg/logger"
)

// KafkaProducerConfig contains configuration for the Kafka event producer.
type KafkaProducerConfig struct {
	Brokers       []string
	SlotTopic     string
	LotTopic      string
	RetryMax      int
	TimeoutMs     int
	RequiredAcks  sarama.RequiredAcks
	Compression   sarama.CompressionCodec
	IdempotentPub bool
}

// DefaultKafkaProducerConfig returns a default producer configuration.
func DefaultKafkaProducerConfig(brokers []string) *KafkaProducerConfig {
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}
	return &KafkaProducerConfig{
		Brokers:       brokers,
		SlotTopic:     "slot-events",
		LotTopic:      "lot-events",
		RetryMax:      3,
		TimeoutMs:     10000,
		RequiredAcks:  sarama.WaitForAll,
		Compression:   sarama.CompressionSnappy,
		IdempotentPub: true,
	}
}

// KafkaEventProducer publishes slot and lot events to Kafka for external
// consumers. Events for one lot land on one partition, so per-lot ordering
// survives the broker.
type KafkaEventProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

func NewKafkaEventProducer(config *KafkaProducerConfig, log *logger.Logger) (*KafkaEventProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.Compression
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentPub
	if config.IdempotentPub {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keys messages by lot, keeping per-lot order.
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaEventProducer{
		producer: producer,
		config:   config,
		log:      log,
	}, nil
}

func (p *KafkaEventProducer) PublishSlotEvent(event SlotEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal slot event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.SlotTopic,
		Key:       sarama.StringEncoder(event.LotID.String()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("lot_id"), Value: []byte(event.LotID.String())},
			{Key: []byte("slot_id"), Value: []byte(event.SlotID.String())},
			{Key: []byte("status"), Value: []byte(event.Status)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish slot event: %w", err)
	}

	p.log.Debug("slot event published",
		slog.String("topic", p.config.SlotTopic),
		slog.Int64("partition", int64(partition)),
		slog.Int64("offset", offset),
		slog.String("slot", event.Identifier),
		slog.String("status", event.Status),
	)
	return nil
}

func (p *KafkaEventProducer) PublishLotEvent(event LotEvent) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal lot event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.LotTopic,
		Key:       sarama.StringEncoder(event.LotID.String()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
		Headers: []sarama.RecordHeader{
			{Key: []byte("lot_id"), Value: []byte(event.LotID.String())},
			{Key: []byte("kind"), Value: []byte(event.Kind)},
		},
	}

	_, _, err = p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish lot event: %w", err)
	}
	return nil
}

func (p *KafkaEventProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
