package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/creatorden/backend/api/responses"
	"github.com/creatorden/backend/pkg/db/models"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
)

const apiKeyHeader = "X-API-Key"

// KeyResolver resolves an API key to its user.
type KeyResolver interface {
	FindByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
}

// APIKeyAuth resolves the X-API-Key header and rejects requests without a
// valid key.
func APIKeyAuth(resolver KeyResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(apiKeyHeader))
			if key == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing api key"))
				return
			}

			user, err := resolver.FindByAPIKey(r.Context(), key)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(seedIdentity(r.Context(), logg, user)))
		})
	}
}

// OptionalAPIKeyAuth seeds the identity when a valid key is present but lets
// anonymous requests through. Public reads use it so gating can account for
// the viewer's subscriptions.
func OptionalAPIKeyAuth(resolver KeyResolver, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(apiKeyHeader))
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.FindByAPIKey(r.Context(), key)
			if err != nil {
				// A bad key on a public read is still rejected, otherwise
				// callers cannot tell a typo from an anonymous view.
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(seedIdentity(r.Context(), logg, user)))
		})
	}
}

func seedIdentity(ctx context.Context, logg *logger.Logger, user *models.User) context.Context {
	ctx = WithUser(ctx, user.ID, user.IsCreator)
	if logg != nil {
		ctx = logg.WithUserID(ctx, user.ID.String())
	}
	return ctx
}
