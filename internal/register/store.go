package register

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
)

// SessionStore persists register sessions. A missing session is not an
// error; Get returns nil and the service starts a fresh one.
type SessionStore interface {
	Get(ctx context.Context, storeID uuid.UUID, registerID string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, storeID uuid.UUID, registerID string) error
	ListRegisterIDs(ctx context.Context, storeID uuid.UUID) ([]string, error)
}

// sessionKV is the slice of the redis client the store needs.
type sessionKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, match string) ([]string, error)
	RegisterSessionKey(storeID, registerID string) string
	RegisterSessionPattern(storeID string) string
}

type redisStore struct {
	kv sessionKV
}

// NewRedisStore returns a SessionStore backed by the shared redis
// client. Sessions carry no TTL; stale held orders are a cron concern.
func NewRedisStore(kv sessionKV) (SessionStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisStore{kv: kv}, nil
}

func (r *redisStore) Get(ctx context.Context, storeID uuid.UUID, registerID string) (*Session, error) {
	key := r.kv.RegisterSessionKey(storeID.String(), registerID)
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load register session")
	}

	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode register session")
	}
	return &session, nil
}

func (r *redisStore) Save(ctx context.Context, session *Session) error {
	if session == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "session required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode register session")
	}
	key := r.kv.RegisterSessionKey(session.StoreID.String(), session.RegisterID)
	if err := r.kv.Set(ctx, key, raw, 0); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save register session")
	}
	return nil
}

func (r *redisStore) Delete(ctx context.Context, storeID uuid.UUID, registerID string) error {
	key := r.kv.RegisterSessionKey(storeID.String(), registerID)
	if err := r.kv.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete register session")
	}
	return nil
}

func (r *redisStore) ListRegisterIDs(ctx context.Context, storeID uuid.UUID) ([]string, error) {
	keys, err := r.kv.ScanKeys(ctx, r.kv.RegisterSessionPattern(storeID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan register sessions")
	}

	prefix := r.kv.RegisterSessionKey(storeID.String(), "") + ":"
	ids := make([]string, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		ids = append(ids, strings.TrimPrefix(key, prefix))
	}
	return ids, nil
}
