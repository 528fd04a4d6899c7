package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// EventDTO is one audit trail entry returned to back-office clients.
type EventDTO struct {
	ID         uuid.UUID         `json:"id"`
	ActorID    *uuid.UUID        `json:"actorId,omitempty"`
	ActorRole  *enums.UserRole   `json:"actorRole,omitempty"`
	Action     enums.AuditAction `json:"action"`
	EntityType string            `json:"entityType"`
	EntityID   string            `json:"entityId"`
	Meta       json.RawMessage   `json:"meta,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// EventList is a cursor page of audit entries.
type EventList struct {
	Events     []EventDTO `json:"events"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

// NewEventDTO maps a persisted audit row to its API shape.
func NewEventDTO(event models.AuditEvent) EventDTO {
	dto := EventDTO{
		ID:         event.ID,
		Action:     event.Action,
		EntityType: event.EntityType,
		EntityID:   event.EntityID,
		CreatedAt:  event.CreatedAt,
	}
	if event.ActorID != nil {
		actorID := *event.ActorID
		dto.ActorID = &actorID
	}
	if event.ActorRole != nil {
		role := *event.ActorRole
		dto.ActorRole = &role
	}
	if len(event.Meta) > 0 {
		dto.Meta = append(json.RawMessage(nil), event.Meta...)
	}
	return dto
}
