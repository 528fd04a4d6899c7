package middleware

import (
	"net/http"
	"strings"

	"github.com/karatworks/aurumpos-backend/api/responses"
	pkgAuth "github.com/karatworks/aurumpos-backend/pkg/auth"
	"github.com/karatworks/aurumpos-backend/pkg/auth/session"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	pkgerrors "github.com/karatworks/aurumpos-backend/pkg/errors"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

// Auth validates a bearer token, confirms the refresh session is still live,
// and seeds the request context with the staff member's identity and store
// binding. Admin tokens carry no store; store-scoped routes enforce that
// separately.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func(err *pkgerrors.Error) {
				w.Header().Set("WWW-Authenticate", "Bearer")
				responses.WriteError(r.Context(), logg, w, err)
			}

			token := bearerToken(r)
			if token == "" {
				reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				warnRejected(r, logg, "invalid token")
				reject(pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					warnRejected(r, logg, "session revoked or expired")
					reject(pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithActor(r.Context(), Actor{
				UserID:  claims.UserID,
				Role:    claims.Role,
				StoreID: claims.StoreID,
			})

			if logg != nil {
				fields := map[string]any{
					"user_id":    claims.UserID.String(),
					"actor_role": string(claims.Role),
				}
				if claims.StoreID != nil {
					fields["store_id"] = claims.StoreID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken pulls the credential out of the Authorization header. A bare
// token without the Bearer prefix is accepted for older register builds.
func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// warnRejected leaves a trace of failed authentication attempts. Registers
// share a network with the sales floor, so repeated rejects are worth seeing.
func warnRejected(r *http.Request, logg *logger.Logger, reason string) {
	if logg == nil {
		return
	}
	ctx := logg.WithFields(r.Context(), map[string]any{
		"path":   r.URL.Path,
		"reason": reason,
	})
	logg.Warn(ctx, "rejected credentials")
}
