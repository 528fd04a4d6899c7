package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// Actor is the authenticated staff identity a request acts as. Auth
// seeds it once from the token claims; downstream middleware and
// controllers read the typed values instead of re-parsing strings.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
	// StoreID is nil for admin tokens, which carry no store binding.
	StoreID *uuid.UUID
}

type actorKey struct{}

// WithActor injects the authenticated identity into the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated identity seeded by Auth.
// The second return is false on routes that never ran it.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
