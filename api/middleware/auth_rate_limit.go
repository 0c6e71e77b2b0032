package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/adoptly/adoptly-backend/api/responses"
	"github.com/adoptly/adoptly-backend/pkg/config"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

// rateLimiterStore is the slice of the redis client the limiter needs.
type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// RateLimitPolicy bounds attempts per client IP and per submitted email
// within a rolling window.
type RateLimitPolicy struct {
	Name       string
	Window     time.Duration
	IPLimit    int
	EmailLimit int
}

func LoginRateLimitPolicy(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{
		Name:       "login",
		Window:     cfg.LoginWindow,
		IPLimit:    cfg.LoginIPLimit,
		EmailLimit: cfg.LoginEmailLimit,
	}
}

func RegisterRateLimitPolicy(cfg config.AuthRateLimitConfig) RateLimitPolicy {
	return RateLimitPolicy{
		Name:       "register",
		Window:     cfg.RegisterWindow,
		IPLimit:    cfg.RegisterIPLimit,
		EmailLimit: cfg.RegisterEmailLimit,
	}
}

// AuthRateLimit throttles credential endpoints. When the store is nil the
// limiter is a no-op so the API still serves without Redis.
func AuthRateLimit(store rateLimiterStore, policy RateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			if policy.IPLimit > 0 {
				ip := clientIP(r)
				key := store.RateLimitKey(policy.Name + ":ip:" + hashValue(ip))
				count, err := store.IncrWithTTL(ctx, key, policy.Window)
				if err != nil {
					// Limiter failures never block auth traffic.
					if logg != nil {
						logg.Error(ctx, "rate_limit.store_error", err)
					}
				} else if count > int64(policy.IPLimit) {
					respondRateLimited(ctx, logg, w)
					return
				}
			}

			if policy.EmailLimit > 0 {
				email, restore := extractEmail(r)
				if restore != nil {
					defer restore()
				}
				if email != "" {
					key := store.RateLimitKey(policy.Name + ":email:" + hashValue(email))
					count, err := store.IncrWithTTL(ctx, key, policy.Window)
					if err != nil {
						if logg != nil {
							logg.Error(ctx, "rate_limit.store_error", err)
						}
					} else if count > int64(policy.EmailLimit) {
						respondRateLimited(ctx, logg, w)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter) {
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, retry later"))
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// extractEmail peeks at the JSON body for the email field and restores the
// body so the handler can decode it again.
func extractEmail(r *http.Request) (string, func()) {
	if r.Body == nil {
		return "", nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	restore := func() {
		r.Body = io.NopCloser(bytes.NewReader(raw))
	}
	restore()
	if err != nil {
		return "", restore
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", restore
	}
	return normalizeEmail(payload.Email), restore
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// hashValue keeps raw emails and IPs out of Redis keys.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
