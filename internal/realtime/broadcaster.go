package realtime

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"parkwise/pkg/logger"
	"parkwise/pkg/metrics"
)

// Publisher is what the reservation engine sees: fire-and-forget fan-out of
// state changes. Core durability never depends on delivery succeeding.
type Publisher interface {
	SlotStatusChanged(lotID, slotID uuid.UUID, identifier, status string, bookingID *uuid.UUID)
	LotChanged(lotID uuid.UUID, kind string, snapshot interface{})
}

// Broadcaster fans events out to the in-process hub and, when configured, to
// Kafka. Publish failures are logged and swallowed.
type Broadcaster struct {
	hub      *Hub
	producer *KafkaEventProducer
	metrics  *metrics.Metrics
	log      *logger.Logger
}

// NewBroadcaster wires the hub with an optional Kafka producer. producer and
// collector may be nil when Kafka or metrics are disabled.
func NewBroadcaster(hub *Hub, producer *KafkaEventProducer, collector *metrics.Metrics, log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		hub:      hub,
		producer: producer,
		metrics:  collector,
		log:      log,
	}
}

func (b *Broadcaster) SlotStatusChanged(lotID, slotID uuid.UUID, identifier, status string, bookingID *uuid.UUID) {
	event := SlotEvent{
		LotID:      lotID,
		SlotID:     slotID,
		Identifier: identifier,
		Status:     status,
		BookingID:  bookingID,
		OccurredAt: time.Now().UTC(),
	}

	b.hub.Broadcast(event)

	if b.metrics != nil {
		b.metrics.SlotTransition(status)
		// Only a fresh reservation carries a booking ID with RESERVED.
		if status == "RESERVED" && bookingID != nil {
			b.metrics.BookingCreated()
		}
	}

	if b.producer != nil {
		if err := b.producer.PublishSlotEvent(event); err != nil {
			b.log.Warn("slot event publish failed",
				slog.String("lot_id", lotID.String()),
				slog.String("slot", identifier),
				slog.Any("error", err),
			)
		}
	}
}

func (b *Broadcaster) LotChanged(lotID uuid.UUID, kind string, snapshot interface{}) {
	event := LotEvent{
		LotID:      lotID,
		Kind:       kind,
		Snapshot:   snapshot,
		OccurredAt: time.Now().UTC(),
	}

	b.hub.Broadcast(event)

	if b.producer == nil {
		return
	}
	if err := b.producer.PublishLotEvent(event); err != nil {
		b.log.Warn("lot event publish failed",
			slog.String("lot_id", lotID.String()),
			slog.String("kind", kind),
			slog.Any("error", err),
		)
	}
}

// Hub exposes the in-process hub for transports that stream events out.
func (b *Broadcaster) Hub() *Hub {
	return b.hub
}
