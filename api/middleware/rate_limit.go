package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/creatorden/backend/api/responses"
	pkgerrors "github.com/creatorden/backend/pkg/errors"
	"github.com/creatorden/backend/pkg/logger"
	"github.com/google/uuid"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// WalletRateLimitPolicy throttles token movements per authenticated user,
// falling back to the client IP for requests that slip through unauthenticated.
type WalletRateLimitPolicy struct {
	name      string
	window    time.Duration
	userLimit int
	ipLimit   int
}

func NewWalletRateLimitPolicy(name string, window time.Duration, userLimit, ipLimit int) WalletRateLimitPolicy {
	return WalletRateLimitPolicy{
		name:      strings.ToLower(strings.TrimSpace(name)),
		window:    window,
		userLimit: userLimit,
		ipLimit:   ipLimit,
	}
}

func (p WalletRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.userLimit > 0 || p.ipLimit > 0)
}

func (p WalletRateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "wallet"
	}
	return p.name
}

func (p WalletRateLimitPolicy) userKey(userID uuid.UUID) string {
	if userID == uuid.Nil {
		return ""
	}
	return fmt.Sprintf("rl:user:%s:%s", p.normalizedName(), userID)
}

func (p WalletRateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		return ""
	}
	return fmt.Sprintf("rl:ip:%s:%s", p.normalizedName(), ip)
}

// WalletRateLimit enforces fixed-window counters on wallet endpoints.
func WalletRateLimit(policy WalletRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID := UserIDFromContext(ctx)
			if policy.userLimit > 0 && userID != uuid.Nil {
				if blocked := enforce(ctx, store, policy, policy.userKey(userID), int64(policy.userLimit), "user", logg, w); blocked {
					return
				}
			} else if policy.ipLimit > 0 {
				if blocked := enforce(ctx, store, policy, policy.ipKey(clientIP(r)), int64(policy.ipLimit), "ip", logg, w); blocked {
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// enforce increments the counter and writes the 429 when the window is exhausted.
// Returns true when the request must not continue.
func enforce(ctx context.Context, store rateLimiterStore, policy WalletRateLimitPolicy, key string, limit int64, scope string, logg *logger.Logger, w http.ResponseWriter) bool {
	if key == "" {
		return false
	}
	count, err := store.IncrWithTTL(ctx, key, policy.window)
	if err != nil {
		responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
		return true
	}
	if count <= limit {
		return false
	}
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{
			"scope":          scope,
			"policy":         policy.normalizedName(),
			"attempts":       count,
			"limit":          limit,
			"window_seconds": int(policy.window.Seconds()),
		})
		logg.Warn(logCtx, "wallet.rate_limit.blocked")
	}
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
	return true
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
