package router

import (
	"strings"

	"github.com/google/uuid"
)

// Helpers shaping optional warehouse columns. The insert layer treats
// nil pointers as NULL, so blank strings and zero UUIDs never reach a
// fact row as junk values.

func stringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func uuidPtr(id *uuid.UUID) *string {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	value := id.String()
	return &value
}

func int64Ptr(value int64) *int64 {
	return &value
}
