package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/karatworks/aurumpos-backend/pkg/enums"
)

// ErrDecoderNotFound reports that no decoder is registered for an event
// type and version pair. Consumers treat it as "this build does not
// speak that payload" rather than as a malformed message.
var ErrDecoderNotFound = errors.New("decoder not registered")

type decoderFunc func(payload json.RawMessage) (interface{}, error)

type decoderKey struct {
	eventType enums.OutboxEventType
	version   int
}

// DecoderRegistry maps sale-event payloads to their decoder by event
// type and envelope version, so older payload shapes stay decodable
// after the schema moves on.
type DecoderRegistry struct {
	mtx      sync.RWMutex
	decoders map[decoderKey]decoderFunc
}

func NewDecoderRegistry() *DecoderRegistry {
	return &DecoderRegistry{decoders: make(map[decoderKey]decoderFunc)}
}

// Register stores a decoder for the event type and version. A later
// registration for the same pair replaces the earlier one.
func (r *DecoderRegistry) Register(eventType enums.OutboxEventType, version int, decoder decoderFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.decoders[decoderKey{eventType: eventType, version: version}] = decoder
}

// Decode runs the registered decoder. The lock is released before the
// decoder runs; decoders must not call back into the registry.
func (r *DecoderRegistry) Decode(eventType enums.OutboxEventType, version int, payload json.RawMessage) (interface{}, error) {
	r.mtx.RLock()
	decoder, ok := r.decoders[decoderKey{eventType: eventType, version: version}]
	r.mtx.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for %s@v%d", ErrDecoderNotFound, eventType, version)
	}
	return decoder(payload)
}
