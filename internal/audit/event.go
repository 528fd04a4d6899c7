package audit

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
)

// NewEvent builds an audit row for the given action. Meta values must
// be JSON-encodable; pass nil when there is nothing extra to record.
func NewEvent(storeID uuid.UUID, actor Actor, action enums.AuditAction, entityType, entityID string, meta map[string]any) (*models.AuditEvent, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if !action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity type required")
	}
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity id required")
	}

	event := &models.AuditEvent{
		StoreID:    storeID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if actor.ID != uuid.Nil {
		actorID := actor.ID
		event.ActorID = &actorID
	}
	if actor.Role != "" {
		role := actor.Role
		event.ActorRole = &role
	}
	if len(meta) > 0 {
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode audit meta")
		}
		event.Meta = raw
	}
	return event, nil
}
