package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jsamuelsen/verse-service/internal/domain"
	"github.com/jsamuelsen/verse-service/internal/ports"
)

// DefaultAdminPassword is accepted while no credential has been stored.
const DefaultAdminPassword = "admin123"

// Credentials verifies and replaces the admin password.
//
// New passwords are stored as bcrypt hashes. A stored value that is not a
// bcrypt hash is treated as a legacy plaintext password and compared in
// constant time.
type Credentials struct {
	store           ports.KeyValueStore
	defaultPassword string
	minLength       int
	cost            int
}

// CredentialsOption configures Credentials.
type CredentialsOption func(*Credentials)

// WithDefaultPassword overrides the password accepted before one is stored.
func WithDefaultPassword(password string) CredentialsOption {
	return func(c *Credentials) { c.defaultPassword = password }
}

// WithMinPasswordLength overrides the minimum length for new passwords.
func WithMinPasswordLength(n int) CredentialsOption {
	return func(c *Credentials) { c.minLength = n }
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) CredentialsOption {
	return func(c *Credentials) { c.cost = cost }
}

// NewCredentials creates a credential manager over store.
func NewCredentials(store ports.KeyValueStore, opts ...CredentialsOption) *Credentials {
	c := &Credentials{
		store:           store,
		defaultPassword: DefaultAdminPassword,
		minLength:       4,
		cost:            bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Verify checks password against the effective credential.
func (c *Credentials) Verify(ctx context.Context, password string) error {
	stored, err := c.store.Get(ctx, ports.KeyCredential)
	if domain.IsNotFound(err) {
		stored = []byte(c.defaultPassword)
	} else if err != nil {
		return fmt.Errorf("reading credential: %w", err)
	}

	if isBcryptHash(stored) {
		err := bcrypt.CompareHashAndPassword(stored, []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.NewUnauthorizedError(domain.MsgWrongPassword)
		}

		if err != nil {
			return fmt.Errorf("comparing credential: %w", err)
		}

		return nil
	}

	if subtle.ConstantTimeCompare(stored, []byte(password)) != 1 {
		return domain.NewUnauthorizedError(domain.MsgWrongPassword)
	}

	return nil
}

// Change replaces the credential. The new password is trimmed first.
func (c *Credentials) Change(ctx context.Context, password string) error {
	password = strings.TrimSpace(password)
	if len([]rune(password)) < c.minLength {
		return domain.NewValidationError("password", fmt.Sprintf(domain.MsgPasswordTooShort, c.minLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return domain.NewValidationError("password", domain.MsgPasswordTooLong)
	}

	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := c.store.Set(ctx, ports.KeyCredential, hash); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}

	return nil
}

func isBcryptHash(b []byte) bool {
	_, err := bcrypt.Cost(b)

	return err == nil
}

// Sessions tracks logged-in admin sessions by opaque token.
// A session ends on logout, on process restart, or after ttl without use.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewSessions creates a session table. ttl <= 0 disables idle expiry.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:      ttl,
		now:      time.Now,
		lastSeen: make(map[string]time.Time),
	}
}

// Create starts a session and returns its token.
func (s *Sessions) Create() string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen[token] = s.now()

	return token
}

// Validate reports whether token is live and refreshes its idle timer.
func (s *Sessions) Validate(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen, ok := s.lastSeen[token]
	if !ok {
		return false
	}

	now := s.now()
	if s.ttl > 0 && now.Sub(seen) > s.ttl {
		delete(s.lastSeen, token)

		return false
	}

	s.lastSeen[token] = now

	return true
}

// Revoke ends the session. Unknown tokens are ignored.
func (s *Sessions) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lastSeen, token)
}

// Len returns the number of tracked sessions, expired or not.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lastSeen)
}
