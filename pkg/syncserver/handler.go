package syncserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cc-d/open2fa/pkg/logger"
	"github.com/cc-d/open2fa/pkg/ratelimiter"
	"github.com/cc-d/open2fa/pkg/remote"
)

const maxBodySize = 1 << 20

type userHashKey struct{}

// HandlerOption configures NewHandler.
type HandlerOption func(*handler)

// WithRateLimit throttles /totps per X-User-Hash, or per client address when
// the header is missing.
func WithRateLimit(l *ratelimiter.Limiter) HandlerOption {
	return func(h *handler) { h.limiter = l }
}

// NewHandler returns the router serving /totps and /health on top of st.
func NewHandler(st Storage, log *slog.Logger, opts ...HandlerOption) http.Handler {
	if log == nil {
		log = logger.Discard()
	}
	h := &handler{storage: st, log: log}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Route(remote.TOTPsPath, func(r chi.Router) {
		if h.limiter != nil {
			r.Use(ratelimiter.Middleware(h.limiter, rateLimitKey,
				ratelimiter.WithDenied(h.tooManyRequests),
				ratelimiter.WithError(h.fail),
			))
		}
		r.Use(requireUserHash)
		r.Post("/", h.push)
		r.Get("/", h.list)
		r.Delete("/", h.delete)
	})
	return r
}

type handler struct {
	storage Storage
	limiter *ratelimiter.Limiter
	log     *slog.Logger
}

func (h *handler) push(w http.ResponseWriter, r *http.Request) {
	user := userHash(r.Context())
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.storage.Put(r.Context(), user, payload.TOTPs); err != nil {
		h.fail(w, r, err)
		return
	}
	stored, err := h.storage.List(r.Context(), user)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.TOTPsPayload{TOTPs: nonNil(stored)})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	stored, err := h.storage.List(r.Context(), userHash(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.TOTPsPayload{TOTPs: nonNil(stored)})
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	payload, err := decodePayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	n, err := h.storage.Delete(r.Context(), userHash(r.Context()), payload.TOTPs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remote.DeleteResponse{Deleted: n})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.storage.Healthcheck(ctx); err != nil {
		h.log.ErrorContext(r.Context(), "healthcheck failed", logger.Error(err))
		writeError(w, http.StatusServiceUnavailable, errors.New("storage unavailable"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.log.ErrorContext(r.Context(), "request failed", logger.Error(err), logger.PublicID(userHash(r.Context())))
	writeError(w, http.StatusInternalServerError, errors.New("internal error"))
}

func (h *handler) tooManyRequests(w http.ResponseWriter, r *http.Request, _ ratelimiter.Result) {
	h.log.WarnContext(r.Context(), "rate limited", logger.PublicID(r.Header.Get(remote.HeaderUserHash)))
	writeError(w, http.StatusTooManyRequests, ErrRateLimited)
}

func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Duration(time.Since(start)),
		)
	})
}

func requireUserHash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(remote.HeaderUserHash)
		if user == "" {
			writeError(w, http.StatusBadRequest, ErrMissingUserHash)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userHashKey{}, user)))
	})
}

func rateLimitKey(r *http.Request) string {
	if user := r.Header.Get(remote.HeaderUserHash); user != "" {
		return "user:" + user
	}
	return "addr:" + r.RemoteAddr
}

func userHash(ctx context.Context) string {
	user, _ := ctx.Value(userHashKey{}).(string)
	return user
}

func decodePayload(w http.ResponseWriter, r *http.Request) (remote.TOTPsPayload, error) {
	var payload remote.TOTPsPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&payload); err != nil {
		return remote.TOTPsPayload{}, errors.Join(ErrInvalidBody, err)
	}
	for _, t := range payload.TOTPs {
		if t.EncSecret == "" {
			return remote.TOTPsPayload{}, ErrMissingEncSecret
		}
	}
	return payload, nil
}

func nonNil(list []remote.TOTP) []remote.TOTP {
	if list == nil {
		return []remote.TOTP{}
	}
	return list
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, remote.ErrorResponse{Error: err.Error()})
}
