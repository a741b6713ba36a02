package ratelimiter

import (
	"net/http"
	"strconv"
	"time"
)

// KeyFunc picks the bucket for a request. An empty key skips limiting.
type KeyFunc func(r *http.Request) string

// DeniedFunc writes the response for a request over its limit.
type DeniedFunc func(w http.ResponseWriter, r *http.Request, res Result)

// ErrorFunc writes the response when the store fails.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// MiddlewareOption customizes Middleware responses.
type MiddlewareOption func(*middleware)

func WithDenied(fn DeniedFunc) MiddlewareOption {
	return func(m *middleware) {
		if fn != nil {
			m.denied = fn
		}
	}
}

func WithError(fn ErrorFunc) MiddlewareOption {
	return func(m *middleware) {
		if fn != nil {
			m.onError = fn
		}
	}
}

type middleware struct {
	limiter *Limiter
	key     KeyFunc
	denied  DeniedFunc
	onError ErrorFunc
}

// Middleware enforces l per key and sets the X-RateLimit-* headers.
func Middleware(l *Limiter, key KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	m := &middleware{
		limiter: l,
		key:     key,
		denied: func(w http.ResponseWriter, _ *http.Request, _ Result) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		},
		onError: func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := m.key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := m.limiter.Allow(r.Context(), k)
			if err != nil {
				m.onError(w, r, err)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(max(0, res.Remaining)))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed() {
				// Rounded up so clients never retry early.
				secs := int((res.RetryAfter(time.Now()) + time.Second - 1) / time.Second)
				h.Set("Retry-After", strconv.Itoa(max(1, secs)))
				m.denied(w, r, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
