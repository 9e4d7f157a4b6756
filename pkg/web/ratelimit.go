package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"
)

const tooManyRequests = "Too many requests from this IP, please try again later."

// RateLimiter counts requests per client in fixed windows
type RateLimiter struct {
	requests int
	window   time.Duration
	counts   *cache.Cache
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: requests,
		window:   window,
		counts:   cache.New(window, 2*window),
	}
}

// Allow records a request from key and reports whether it fits in the current window, along
// with the requests left and when the window resets.
func (l *RateLimiter) Allow(key string) (bool, int, time.Time) {
	count := 1
	if err := l.counts.Add(key, count, l.window); err != nil {
		n, err := l.counts.IncrementInt(key, 1)
		if err != nil {
			// the window expired between the two calls
			l.counts.Set(key, count, l.window)
		} else {
			count = n
		}
	}

	reset := time.Now().Add(l.window)
	if _, expiration, ok := l.counts.GetWithExpiration(key); ok {
		reset = expiration
	}

	return count <= l.requests, max(l.requests-count, 0), reset
}

func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/metrics" {
				return next(c)
			}

			ok, remaining, reset := l.Allow(c.RealIP())

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(l.requests))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

			if !ok {
				retry := max(int(time.Until(reset).Seconds()), 1)
				h.Set("Retry-After", strconv.Itoa(retry))
				return c.JSON(http.StatusTooManyRequests, errorResponse{Message: tooManyRequests})
			}

			return next(c)
		}
	}
}
