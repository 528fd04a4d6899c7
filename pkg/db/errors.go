package db

import (
	"strings"

	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether the error is a Postgres unique
// violation, optionally on one specific constraint. Typed driver errors
// are checked first; the string fallback covers errors that were
// flattened by wrapping (and sqlite's message format in tests).
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}

	if diag, ok := pkgerrors.PGDiagFrom(err); ok {
		if diag.Code != pgUniqueViolation {
			return false
		}
		return constraintName == "" || diag.Constraint == constraintName
	}

	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
