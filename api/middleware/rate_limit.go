package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/suncrest-energy/solarquote-backend/api/responses"
	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
	"github.com/suncrest-energy/solarquote-backend/pkg/logger"
	pkgredis "github.com/suncrest-energy/solarquote-backend/pkg/redis"
)

// RateLimitPolicy bounds request volume per client over a fixed window.
type RateLimitPolicy struct {
	Scope  string
	Limit  int64
	Window time.Duration
}

// RateLimit rejects requests beyond the policy's fixed-window budget,
// keyed per client IP. A missing store or a counter outage fails open.
func RateLimit(store pkgredis.RateLimitStore, logg *logger.Logger, policy RateLimitPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || policy.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			scope := policy.Scope + ":" + clientIP(r)
			allowed, attempts, err := store.FixedWindowAllow(r.Context(), scope, policy.Limit, policy.Window)
			if err != nil {
				logError(r.Context(), logg, "rate limit check", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"scope":    policy.Scope,
						"attempts": attempts,
						"limit":    policy.Limit,
						"window":   policy.Window.String(),
					})
					logg.Warn(ctx, "rate limit exceeded")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
