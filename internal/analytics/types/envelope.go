package types

import (
	"encoding/json"
	"time"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Envelope is the canonical analytics view of a published outbox event.
// Routing fields come from the Pub/Sub attributes; Version and Payload
// come from the stored payload envelope.
type Envelope struct {
	EventID       string                    `json:"event_id"`
	EventType     enums.OutboxEventType     `json:"event_type"`
	StoreID       string                    `json:"store_id"`
	AggregateType enums.OutboxAggregateType `json:"aggregate_type"`
	AggregateID   string                    `json:"aggregate_id"`
	OccurredAt    time.Time                 `json:"occurred_at"`
	Version       int                       `json:"version"`
	Payload       json.RawMessage           `json:"payload"`
}
