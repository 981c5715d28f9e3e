package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/sisterblooms/storefront-backend/api/responses"
	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

// RateLimiter counts hits per scope in a fixed window; *redis.Client satisfies it.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// SessionRateLimit caps requests per guest session in a fixed window. It is
// a pass-through when limiter is nil or the policy is disabled.
func SessionRateLimit(name string, limit int64, window time.Duration, limiter RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil || limit <= 0 || window <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sid := SessionIDFromContext(ctx)
			if sid == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required"))
				return
			}

			allowed, count, err := limiter.FixedWindowAllow(ctx, name+":"+sid, limit, window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         name,
						"attempts":       count,
						"limit":          limit,
						"window_seconds": int(window.Seconds()),
					}), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests, try again shortly"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
