package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/cc-d/open2fa/pkg/logger"
	"github.com/cc-d/open2fa/pkg/totp"
)

const (
	FileName = "secrets.json"

	DirPerm  os.FileMode = 0o700
	FilePerm os.FileMode = 0o600
)

// ConfirmFunc asks the user a yes/no question. It must return true only on an
// explicit yes.
type ConfirmFunc func(prompt string) bool

// Store is the ordered, file-backed collection of TOTP secrets.
// Every mutation rewrites secrets.json in full. A Store is not safe for
// concurrent use; one process is expected to own the directory at a time.
type Store struct {
	dir      string
	path     string
	secrets  []*Secret
	interval int
	now      func() time.Time
	confirm  ConfirmFunc
	log      *slog.Logger
}

// Option defines a function that configures Store.
type Option func(*Store)

// WithClock overrides the time source used for code generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithInterval sets the TOTP interval length in seconds.
func WithInterval(seconds int) Option {
	return func(s *Store) {
		if seconds > 0 {
			s.interval = seconds
		}
	}
}

// WithConfirm sets the prompt used by Remove when force is false.
// Without it every unforced removal is declined.
func WithConfirm(fn ConfirmFunc) Option {
	return func(s *Store) { s.confirm = fn }
}

// WithLogger sets the logger for file lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

type document struct {
	Secrets []entry `json:"secrets"`
}

type entry struct {
	Secret string  `json:"secret"`
	Name   *string `json:"name"`
}

// New opens the store in dir, creating the directory (0700) and an empty
// secrets.json (0600) when they are missing, and loads every entry.
func New(dir string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, ErrInvalidDir
	}

	s := &Store{
		dir:      dir,
		path:     filepath.Join(dir, FileName),
		interval: totp.DefaultPeriod,
		now:      time.Now,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ensureDir(); err != nil {
		return nil, err
	}
	if err := s.ensureFile(); err != nil {
		return nil, err
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory that owns the store files.
func (s *Store) Dir() string { return s.dir }

// Path returns the location of secrets.json.
func (s *Store) Path() string { return s.path }

// Interval returns the TOTP interval length in seconds.
func (s *Store) Interval() int { return s.interval }

// Len returns the number of stored secrets.
func (s *Store) Len() int { return len(s.secrets) }

// Secrets returns a copy of all secrets in display order.
func (s *Store) Secrets() []Secret {
	out := make([]Secret, len(s.secrets))
	for i, sec := range s.secrets {
		out[i] = *sec
	}
	return out
}

// Contains reports whether the exact (secret, name) pair is stored.
func (s *Store) Contains(secret, name string) bool {
	return slices.ContainsFunc(s.secrets, func(sec *Secret) bool { return sec.Is(secret, name) })
}

// Find returns the first secret, in display order, matched by sel.
func (s *Store) Find(sel Selector) (Secret, bool) {
	if sel.IsEmpty() {
		return Secret{}, false
	}
	for _, sec := range s.secrets {
		if sel.Match(*sec) {
			return *sec, true
		}
	}
	return Secret{}, false
}

// Filter returns secrets whose name contains name and whose secret contains
// secret. Empty filters match everything.
func (s *Store) Filter(name, secret string) []Secret {
	out := make([]Secret, 0, len(s.secrets))
	for _, sec := range s.secrets {
		if name != "" && !strings.Contains(sec.Name, name) {
			continue
		}
		if secret != "" && !strings.Contains(sec.Secret, secret) {
			continue
		}
		out = append(out, *sec)
	}
	return out
}

// Add stores a new secret and persists the store.
// The (secret, name) pair must not already exist.
func (s *Store) Add(secret, name string) (*Secret, error) {
	secret = strings.TrimSpace(secret)
	if s.Contains(secret, name) {
		return nil, fmt.Errorf("%w: %q", ErrSecretExists, name)
	}

	sec, err := NewSecret(secret, name, s.interval, s.now())
	if err != nil {
		return nil, err
	}

	prev := s.secrets
	s.secrets = append(slices.Clone(prev), sec)
	s.sort()

	if err := s.Write(); err != nil {
		s.secrets = prev
		return nil, err
	}
	s.log.Debug("secret added", logger.SecretName(name))

	out := *sec
	return &out, nil
}

// Remove deletes every secret matched by sel and returns how many were removed.
// Unless force is set, each match is confirmed through the ConfirmFunc and a
// negative answer keeps the secret.
func (s *Store) Remove(sel Selector, force bool) (int, error) {
	if sel.IsEmpty() {
		return 0, ErrNoSelector
	}

	prev := s.secrets
	kept := make([]*Secret, 0, len(prev))
	removed := 0
	for _, sec := range prev {
		if !sel.Match(*sec) {
			kept = append(kept, sec)
			continue
		}
		if !force && !s.confirmRemoval(*sec) {
			kept = append(kept, sec)
			continue
		}
		removed++
	}

	s.secrets = kept
	if err := s.Write(); err != nil {
		s.secrets = prev
		return 0, err
	}
	s.log.Debug("secrets removed", logger.Count(removed))
	return removed, nil
}

// Merge adds every incoming secret whose (secret, name) pair is not stored
// yet and persists once. It returns the secrets that were actually added.
// All incoming secrets are validated before anything changes.
func (s *Store) Merge(incoming []Secret) ([]Secret, error) {
	now := s.now()
	fresh := make([]*Secret, 0, len(incoming))
	for _, in := range incoming {
		if s.Contains(in.Secret, in.Name) || slices.ContainsFunc(fresh, func(f *Secret) bool { return f.Is(in.Secret, in.Name) }) {
			continue
		}
		sec, err := NewSecret(in.Secret, in.Name, s.interval, now)
		if err != nil {
			return nil, err
		}
		fresh = append(fresh, sec)
	}

	if len(fresh) == 0 {
		return []Secret{}, nil
	}

	prev := s.secrets
	s.secrets = append(slices.Clone(prev), fresh...)
	s.sort()
	if err := s.Write(); err != nil {
		s.secrets = prev
		return nil, err
	}

	added := make([]Secret, len(fresh))
	for i, sec := range fresh {
		added[i] = *sec
	}
	s.log.Debug("secrets merged", slog.Int("added", len(added)), slog.Int("incoming", len(incoming)))
	return added, nil
}

// Generate returns a restartable sequence of secrets with freshly generated
// codes. Every stored secret is refreshed on each pass; only those whose name
// contains nameFilter are yielded. A secret that cannot produce a code is
// yielded together with its error.
// The store must not be mutated while the sequence is being consumed.
func (s *Store) Generate(nameFilter string) iter.Seq2[*Secret, error] {
	return func(yield func(*Secret, error) bool) {
		now := s.now()
		for _, sec := range s.secrets {
			err := sec.Refresh(s.interval, now)
			if nameFilter != "" && !strings.Contains(sec.Name, nameFilter) {
				continue
			}
			if !yield(sec, err) {
				return
			}
		}
	}
}

// Codes collects one Generate pass into a slice of copies.
func (s *Store) Codes(nameFilter string) ([]Secret, error) {
	out := make([]Secret, 0, len(s.secrets))
	for sec, err := range s.Generate(nameFilter) {
		if err != nil {
			return nil, err
		}
		out = append(out, *sec)
	}
	return out, nil
}

// Write serializes every secret to secrets.json atomically: the document is
// written to a temporary file in the same directory and renamed over the
// target, so the previous file stays intact until the rename succeeds.
func (s *Store) Write() error {
	doc := document{Secrets: make([]entry, 0, len(s.secrets))}
	for _, sec := range s.secrets {
		e := entry{Secret: sec.Secret}
		if sec.Name != "" {
			name := sec.Name
			e.Name = &name
		}
		doc.Secrets = append(doc.Secrets, e)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Join(ErrFailedToWriteFile, err)
	}
	return writeFileAtomic(s.path, data, FilePerm)
}

func (s *Store) confirmRemoval(sec Secret) bool {
	if s.confirm == nil {
		return false
	}
	return s.confirm(fmt.Sprintf("Are you sure you want to remove %s %s? (y/n): ", sec.Name, Truncate(sec.Secret)))
}

// sort orders secrets case-insensitively by name; equal names keep insertion order.
func (s *Store) sort() {
	fold := cases.Fold()
	slices.SortStableFunc(s.secrets, func(a, b *Secret) int {
		return strings.Compare(fold.String(a.Name), fold.String(b.Name))
	})
}

func (s *Store) ensureDir() error {
	info, err := os.Stat(s.dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrInvalidDir, s.dir)
		}
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errors.Join(ErrFailedToCreateDirectory, err)
	}

	s.log.Info("creating open2fa directory", logger.Path(s.dir))
	if err := os.MkdirAll(s.dir, DirPerm); err != nil {
		return errors.Join(ErrFailedToCreateDirectory, err)
	}
	// MkdirAll is subject to umask.
	if err := os.Chmod(s.dir, DirPerm); err != nil {
		return errors.Join(ErrFailedToCreateDirectory, err)
	}
	return nil
}

func (s *Store) ensureFile() error {
	_, err := os.Stat(s.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return errors.Join(ErrFailedToReadFile, err)
	}

	s.log.Info("creating secrets file", logger.Path(s.path))
	return writeFileAtomic(s.path, []byte(`{"secrets": []}`), FilePerm)
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return errors.Join(ErrFailedToReadFile, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Join(ErrInvalidFile, err)
	}

	s.secrets = make([]*Secret, 0, len(doc.Secrets))
	for _, e := range doc.Secrets {
		sec := &Secret{Secret: e.Secret}
		if e.Name != nil {
			sec.Name = *e.Name
		}
		s.secrets = append(s.secrets, sec)
	}
	s.sort()
	s.log.Debug("secrets loaded", logger.Count(len(s.secrets)), logger.Path(s.path))
	return nil
}
