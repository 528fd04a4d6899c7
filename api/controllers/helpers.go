package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/api/middleware"
	"github.com/karatworks/aurumpos-backend/api/validators"
	"github.com/karatworks/aurumpos-backend/internal/audit"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/pagination"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

// storeIDFromRequest resolves the store the token is bound to. Routes
// behind RequireStore always have one, so a miss here is a routing bug.
func storeIDFromRequest(r *http.Request) (uuid.UUID, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok || actor.StoreID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return *actor.StoreID, nil
}

// actorFromRequest builds the audit actor from the authenticated claims.
func actorFromRequest(r *http.Request) (audit.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return audit.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return audit.Actor{ID: actor.UserID, Role: actor.Role}, nil
}

// pageParams reads limit/cursor query parameters.
func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", defaultPageLimit, 1, maxPageLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field)
	}
	return id, nil
}
