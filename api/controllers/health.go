package controllers

import (
	"context"
	"net/http"

	"github.com/karatworks/aurumpos-backend/api/responses"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthz reports liveness plus the reachability of postgres and redis.
// A register cannot ring sales without both, so either failing turns the
// endpoint red.
func Healthz(db Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				checks["db"] = "unreachable"
				healthy = false
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		if !healthy {
			err := pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed")
			responses.WriteError(r.Context(), logg, w, err.WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ok", "checks": checks})
	}
}
