package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/redis"
)

// Guard keeps one Redis flag per delivered event so a consumer that sees
// the same sale event twice, through subscription redelivery or a publisher
// crash between publish and mark, only acts on it once. Keys live under
// `aurum:idempotency:evt:processed:<consumer>:<event_id>` and expire after
// the configured TTL; the TTL only has to outlive the subscription's
// redelivery horizon, not the life of the event.
type Guard struct {
	store    redis.IdempotencyStore
	consumer string
	ttl      time.Duration
}

// NewGuard binds the guard to a single consumer name. Consumers of the
// same topic keep separate claim sets, so the analytics worker dropping a
// duplicate does not hide the event from anything else.
func NewGuard(store redis.IdempotencyStore, consumer string, ttl time.Duration) (*Guard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if consumer == "" {
		return nil, errors.New("consumer name is required")
	}
	if ttl <= 0 {
		return nil, errors.New("ttl must be positive")
	}
	return &Guard{
		store:    store,
		consumer: consumer,
		ttl:      ttl,
	}, nil
}

// Claim atomically claims the event for this consumer. The first caller
// gets true; every later caller inside the TTL gets false and should drop
// the delivery without side effects.
func (g *Guard) Claim(ctx context.Context, eventID uuid.UUID) (bool, error) {
	key, err := g.claimKey(eventID)
	if err != nil {
		return false, err
	}
	return g.store.SetNX(ctx, key, "1", g.ttl)
}

// Release drops the claim so a redelivery gets to retry the event. Call it
// when processing fails after Claim succeeded; skipping it would turn a
// transient failure into a permanently lost event.
func (g *Guard) Release(ctx context.Context, eventID uuid.UUID) error {
	key, err := g.claimKey(eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *Guard) claimKey(eventID uuid.UUID) (string, error) {
	if eventID == uuid.Nil {
		return "", errors.New("event id is required")
	}
	scope := fmt.Sprintf("evt:processed:%s", g.consumer)
	return g.store.IdempotencyKey(scope, eventID.String()), nil
}
