package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kakera-app/kakera-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// rate: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// allowAuthAttempt enforces the per-IP rate limit on credential endpoints.
// Returns a 429 error when the limit is exceeded.
func (s *Server) allowAuthAttempt(ip string, path string) error {
	if s.authRateLimiter == nil || ip == "" {
		return nil
	}

	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("Rate limit exceeded", "ip", ip, "path", path)
		return huma.Error429TooManyRequests("Too many requests. Please try again later.")
	}

	return nil
}

// getClientIP extracts the client IP from forwarded headers, falling
// back to the first value when the chain contains multiple addresses.
func getClientIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		for i := 0; i < len(xForwardedFor); i++ {
			if xForwardedFor[i] == ',' {
				return xForwardedFor[:i]
			}
		}
		return xForwardedFor
	}
	return xRealIP
}
