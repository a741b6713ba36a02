// Package ratelimiter implements a token bucket limiter with an in-memory
// store and net/http middleware.
//
// Each key owns a bucket of Capacity tokens that regains RefillRate tokens
// every RefillInterval. A request takes one token; when none is left the
// request is denied and the bucket is left as is.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	limiter, err := ratelimiter.New(store, ratelimiter.Config{
//		Capacity:       60,
//		RefillRate:     1,
//		RefillInterval: time.Second,
//	})
//	if err != nil {
//		return err
//	}
//
//	r.Use(ratelimiter.Middleware(limiter, func(r *http.Request) string {
//		return r.Header.Get("X-User-Hash")
//	}))
//
// The middleware sets X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset on every limited response and Retry-After on denials.
package ratelimiter
