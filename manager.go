package open2fa

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/cc-d/open2fa/pkg/identity"
	"github.com/cc-d/open2fa/pkg/logger"
	"github.com/cc-d/open2fa/pkg/remote"
	"github.com/cc-d/open2fa/pkg/secrets"
	"github.com/cc-d/open2fa/pkg/store"
)

// IdentitySource tells where the current identity came from.
type IdentitySource int

const (
	SourceNone   IdentitySource = iota
	SourceConfig                // Config.UUID: explicit value or OPEN2FA_UUID
	SourceFile                  // open2fa.uuid in the base directory
)

// InitStatus is the outcome of Manager.Init.
type InitStatus int

const (
	InitFailed InitStatus = iota
	InitAlreadyInitialized
	InitLoadedFromFile
	InitCreated
	InitDeclined
)

func (s InitStatus) String() string {
	switch s {
	case InitAlreadyInitialized:
		return "already initialized"
	case InitLoadedFromFile:
		return "loaded from file"
	case InitCreated:
		return "created"
	case InitDeclined:
		return "declined"
	default:
		return "failed"
	}
}

// Filter selects local secrets for Push by substring. Empty fields match
// everything; set fields must all match.
type Filter struct {
	Name   string
	Secret string
}

// PullResult is what Pull fetched from the remote and what it added locally.
type PullResult struct {
	Secrets []store.Secret // every decrypted remote secret
	Added   []store.Secret // subset merged into the local store; empty unless persisted
}

// Manager ties the local store to an optional remote identity.
// The identity is fixed at construction; Init returns a new Manager rather
// than changing the receiver.
type Manager struct {
	cfg     Config
	store   *store.Store
	client  *remote.Client
	ident   identity.Identity
	source  IdentitySource
	confirm store.ConfirmFunc
	log     *slog.Logger
}

type options struct {
	confirm    store.ConfirmFunc
	log        *slog.Logger
	httpClient *http.Client
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*options)

// WithConfirm sets the yes/no prompt used for unforced removals and for
// creating a new identity in Init. Without it both are declined.
func WithConfirm(fn store.ConfirmFunc) Option {
	return func(o *options) { o.confirm = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithHTTPClient replaces the HTTP client used for remote calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithClock overrides the time source for code generation.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New opens the store in cfg.Dir and resolves the identity: cfg.UUID when
// set, otherwise the identity file when present, otherwise none.
func New(cfg Config, opts ...Option) (*Manager, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	o := &options{log: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	st, err := store.New(cfg.Dir,
		store.WithInterval(cfg.Interval),
		store.WithConfirm(o.confirm),
		store.WithClock(o.now),
		store.WithLogger(o.log.With(logger.Component("store"))),
	)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:     cfg,
		store:   st,
		confirm: o.confirm,
		log:     o.log,
		client: remote.NewClient(cfg.APIURL,
			remote.WithTimeout(cfg.Timeout),
			remote.WithHTTPClient(o.httpClient),
			remote.WithLogger(o.log.With(logger.Component("remote"))),
		),
	}

	switch {
	case cfg.UUID != "":
		ident, err := identity.Parse(cfg.UUID)
		if err != nil {
			return nil, err
		}
		m.ident, m.source = ident, SourceConfig
	default:
		ident, err := identity.Load(identity.Path(cfg.Dir))
		switch {
		case err == nil:
			m.ident, m.source = ident, SourceFile
		case !errors.Is(err, identity.ErrIdentityNotFound):
			return nil, err
		}
	}

	return m, nil
}

// Config returns the normalized configuration.
func (m *Manager) Config() Config { return m.cfg }

// Store exposes the local secret store.
func (m *Manager) Store() *store.Store { return m.store }

// Identity returns the current identity; it is zero when none is set.
func (m *Manager) Identity() identity.Identity { return m.ident }

// IdentitySource reports where Identity came from.
func (m *Manager) IdentitySource() IdentitySource { return m.source }

// HasIdentity reports whether remote operations are available.
func (m *Manager) HasIdentity() bool { return !m.ident.IsZero() }

// Add stores a new secret.
func (m *Manager) Add(secret, name string) (*store.Secret, error) {
	return m.store.Add(secret, name)
}

// Remove deletes matching local secrets.
func (m *Manager) Remove(sel store.Selector, force bool) (int, error) {
	return m.store.Remove(sel, force)
}

// Generate refreshes codes; see store.Store.Generate.
func (m *Manager) Generate(nameFilter string) iter.Seq2[*store.Secret, error] {
	return m.store.Generate(nameFilter)
}

// Secrets lists local secrets in display order.
func (m *Manager) Secrets() []store.Secret {
	return m.store.Secrets()
}

// Init bootstraps the remote identity. It returns the Manager to use from
// then on: the receiver when nothing changed, a copy carrying the identity
// otherwise. A new identity is only adopted after its file is written.
func (m *Manager) Init() (*Manager, InitStatus, error) {
	if m.HasIdentity() {
		return m, InitAlreadyInitialized, nil
	}

	path := identity.Path(m.cfg.Dir)
	if identity.Exists(path) {
		ident, err := identity.Load(path)
		if err != nil {
			return m, InitFailed, err
		}
		m.log.Debug("identity loaded", logger.PublicID(ident.PublicID()))
		return m.withIdentity(ident, SourceFile), InitLoadedFromFile, nil
	}

	if m.confirm == nil || !m.confirm("Do you want to initialize remote capabilities of Open2FA? (y/n): ") {
		return m, InitDeclined, nil
	}

	ident, err := identity.New()
	if err != nil {
		return m, InitFailed, err
	}
	if err := identity.Save(path, ident); err != nil {
		return m, InitFailed, err
	}
	m.log.Info("identity created", logger.PublicID(ident.PublicID()), logger.Path(path))
	return m.withIdentity(ident, SourceFile), InitCreated, nil
}

// Push encrypts the local secrets selected by f, uploads them in one request
// and returns the decrypted set the remote reports as stored.
func (m *Manager) Push(ctx context.Context, f Filter) ([]store.Secret, error) {
	if !m.HasIdentity() {
		return nil, ErrNoIdentity
	}

	selected := m.store.Filter(f.Name, f.Secret)
	payload, err := m.encrypt(selected)
	if err != nil {
		return nil, err
	}

	stored, err := m.client.Push(ctx, m.ident.PublicID(), payload)
	if err != nil {
		return nil, err
	}

	out, err := m.decrypt(stored)
	if err != nil {
		return nil, err
	}
	m.log.DebugContext(ctx, "secrets pushed", logger.Count(len(payload)), slog.Int("remote", len(out)))
	return out, nil
}

// Pull fetches every remote secret. With persist set, secrets whose
// (secret, name) pair is not stored locally are merged into the store.
// The result always carries the full decrypted remote set.
func (m *Manager) Pull(ctx context.Context, persist bool) (PullResult, error) {
	if !m.HasIdentity() {
		return PullResult{}, ErrNoIdentity
	}

	fetched, err := m.client.List(ctx, m.ident.PublicID())
	if err != nil {
		return PullResult{}, err
	}

	pulled, err := m.decrypt(fetched)
	if err != nil {
		return PullResult{}, err
	}

	res := PullResult{Secrets: pulled, Added: []store.Secret{}}
	if !persist {
		return res, nil
	}

	added, err := m.store.Merge(pulled)
	if err != nil {
		return PullResult{}, err
	}
	res.Added = added
	m.log.DebugContext(ctx, "secrets pulled", logger.Count(len(pulled)), slog.Int("added", len(added)))
	return res, nil
}

// Delete removes one secret from the remote. The first local secret matched
// by sel, in display order, is encrypted and sent; the count the remote
// reports is returned as is. The local store is not changed.
func (m *Manager) Delete(ctx context.Context, sel store.Selector) (int, error) {
	if !m.HasIdentity() {
		return 0, ErrNoIdentity
	}
	if sel.IsEmpty() {
		return 0, store.ErrNoSelector
	}

	sec, ok := m.store.Find(sel)
	if !ok {
		return 0, ErrNoMatch
	}

	payload, err := m.encrypt([]store.Secret{sec})
	if err != nil {
		return 0, err
	}

	n, err := m.client.Delete(ctx, m.ident.PublicID(), payload)
	if err != nil {
		return 0, err
	}
	m.log.DebugContext(ctx, "remote secret deleted", logger.SecretName(sec.Name), logger.Count(n))
	return n, nil
}

func (m *Manager) withIdentity(ident identity.Identity, source IdentitySource) *Manager {
	c := *m
	c.ident, c.source = ident, source
	return &c
}

func (m *Manager) encrypt(list []store.Secret) ([]remote.TOTP, error) {
	key := m.ident.Key()
	out := make([]remote.TOTP, 0, len(list))
	for _, sec := range list {
		enc, err := secrets.Encrypt(sec.Secret, key)
		if err != nil {
			return nil, fmt.Errorf("encrypt %q: %w", sec.Name, err)
		}
		out = append(out, remote.NewTOTP(sec.Name, enc))
	}
	return out, nil
}

func (m *Manager) decrypt(list []remote.TOTP) ([]store.Secret, error) {
	key := m.ident.Key()
	out := make([]store.Secret, 0, len(list))
	for _, t := range list {
		plain, err := secrets.Decrypt(t.EncSecret, key)
		if err != nil {
			return nil, fmt.Errorf("decrypt %q: %w", t.DisplayName(), err)
		}
		out = append(out, store.Secret{Secret: plain, Name: t.DisplayName()})
	}
	return out, nil
}
