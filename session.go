package filevault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is the lifetime of an issued token.
const DefaultSessionTTL = 24 * time.Hour

const sessionKeyPrefix = "auth_"

// SessionManager issues and validates opaque session tokens. It is the single
// place that decides who a caller is: token validity is delegated entirely to
// the cache's TTL, so expiry needs no background sweep and logout is a single
// delete.
type SessionManager struct {
	users UserRepo
	cache SessionCache
	ttl   time.Duration
}

// SessionConfig holds configuration options for SessionManager.
type SessionConfig struct {
	TTL time.Duration // token lifetime (default: DefaultSessionTTL)
}

func NewSessionManager(users UserRepo, cache SessionCache, cfg SessionConfig) *SessionManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{users: users, cache: cache, ttl: ttl}
}

// Register creates a new user from an email and a plain-text password.
// Missing fields map to MissingFieldError; a duplicate email maps to
// ErrBadRequest via the repo.
func (m *SessionManager) Register(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	if email == "" {
		return User{}, fmt.Errorf("register: %w", &MissingFieldError{Field: "email"})
	}
	if password == "" {
		return User{}, fmt.Errorf("register: %w", &MissingFieldError{Field: "password"})
	}

	hash, err := HashPassword(password)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	user, err := m.users.InsertUser(ctx, email, hash)
	if err != nil {
		return User{}, fmt.Errorf("register: %w", err)
	}

	return user, nil
}

// Issue exchanges a "Basic base64(email:password)" authorization value for a
// fresh session token. A malformed value is ErrBadRequest, distinct from bad
// credentials which are ErrUnauthenticated.
func (m *SessionManager) Issue(ctx context.Context, authorization string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	email, password, err := ParseBasicCredentials(authorization)
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	user, err := m.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("issue session: %w", ErrUnauthenticated)
		}
		return "", fmt.Errorf("issue session: %w: %v", ErrStore, err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", fmt.Errorf("issue session: %w", ErrUnauthenticated)
	}

	token := uuid.NewString()
	if err := m.cache.SetWithTTL(ctx, sessionKeyPrefix+token, user.ID.String(), m.ttl); err != nil {
		return "", fmt.Errorf("issue session: %w: %v", ErrStore, err)
	}

	return token, nil
}

// Resolve maps a token to its user identifier. A miss (absent or expired
// entry) yields ok=false with no error; the caller decides how to react.
// Resolve never extends the TTL.
func (m *SessionManager) Resolve(ctx context.Context, token string) (userID string, ok bool, err error) {
	if token == "" {
		return "", false, nil
	}

	value, ok, err := m.cache.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		return "", false, fmt.Errorf("resolve session: %w: %v", ErrStore, err)
	}
	if !ok {
		return "", false, nil
	}

	return value, true, nil
}

// End deletes the session for token. A token that does not currently resolve
// is ErrUnauthenticated; a second End on the same token therefore fails
// rather than silently succeeding.
func (m *SessionManager) End(ctx context.Context, token string) error {
	_, ok, err := m.Resolve(ctx, token)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if !ok {
		return fmt.Errorf("end session: %w", ErrUnauthenticated)
	}

	if err := m.cache.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("end session: %w: %v", ErrStore, err)
	}

	return nil
}

// Me resolves token and loads the authenticated user.
func (m *SessionManager) Me(ctx context.Context, token string) (User, error) {
	userID, ok, err := m.Resolve(ctx, token)
	if err != nil {
		return User{}, fmt.Errorf("me: %w", err)
	}
	if !ok {
		return User{}, fmt.Errorf("me: %w", ErrUnauthenticated)
	}

	user, err := m.users.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, fmt.Errorf("me: %w", ErrUnauthenticated)
		}
		return User{}, fmt.Errorf("me: %w: %v", ErrStore, err)
	}

	return user, nil
}
