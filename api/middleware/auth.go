package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/adoptly/adoptly-backend/api/responses"
	pkgauth "github.com/adoptly/adoptly-backend/pkg/auth"
	"github.com/adoptly/adoptly-backend/pkg/config"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

const bearerPrefix = "Bearer "

// Auth validates the bearer token and seeds the caller identity into the
// request context. Requests without a valid token never reach the handler.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, bearerPrefix) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			if tokenString == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, tokenString)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, fmt.Errorf("parsing access token: %w", err), "invalid or expired token"))
				return
			}

			userID := claims.UserID.String()
			ctx = WithUserID(ctx, userID)
			ctx = withUsername(ctx, claims.Username)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func withUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxUsername, username)
}
