package syncserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cc-d/open2fa/pkg/logger"
	"github.com/cc-d/open2fa/pkg/pg"
	"github.com/cc-d/open2fa/pkg/ratelimiter"
	redisx "github.com/cc-d/open2fa/pkg/redis"
)

type Config struct {
	Addr            string        `env:"OPEN2FA_SERVER_ADDR" envDefault:":8080"`
	Storage         string        `env:"OPEN2FA_SERVER_STORAGE" envDefault:"memory"` // memory, redis or postgres
	ReadTimeout     time.Duration `env:"OPEN2FA_SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"OPEN2FA_SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"OPEN2FA_SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"OPEN2FA_SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	Redis     redisx.Config
	Postgres  pg.Config
	RateLimit ratelimiter.Config
}

// OpenStorage builds the backend named by cfg.Storage. The returned close
// function releases its connections and is never nil on success.
func OpenStorage(ctx context.Context, cfg Config, log *slog.Logger) (Storage, func(), error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Storage(cfg.Storage))

	switch cfg.Storage {
	case "", StorageMemory:
		return NewMemoryStorage(), func() {}, nil

	case StorageRedis:
		client, err := redisx.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.InfoContext(ctx, "connected to redis")
		return NewRedisStorage(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil

	case StoragePostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		n, err := pg.Migrate(ctx, pool, Migrations(), cfg.Postgres, log)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.InfoContext(ctx, "connected to postgres", slog.Int("migrations_applied", n))
		return NewPostgresStorage(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorage, cfg.Storage)
	}
}

// Server runs the HTTP listener with graceful shutdown.
type Server struct {
	cfg     Config
	handler http.Handler
	log     *slog.Logger

	mu   sync.Mutex
	srv  *http.Server
	addr net.Addr
	once sync.Once
}

func NewServer(cfg Config, handler http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	return &Server{cfg: cfg, handler: handler, log: log}
}

// Addr returns the bound address once Run is listening, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run listens on cfg.Addr and serves until ctx is done, then shuts down
// within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, errors.New("server already running"))
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	s.addr = ln.Addr()
	s.srv = &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	srv := s.srv
	s.mu.Unlock()

	s.log.InfoContext(ctx, "sync server listening", slog.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var runErr error
	select {
	case <-ctx.Done():
		if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		runErr = <-errCh
	case runErr = <-errCh:
	}

	if runErr != nil && !errors.Is(runErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, runErr)
	}
	return nil
}

// Shutdown stops the server gracefully. Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()
		if srv == nil {
			return
		}

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err = srv.Shutdown(ctx)
		s.log.InfoContext(ctx, "sync server stopped")
	})

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	return nil
}
