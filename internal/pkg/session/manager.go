// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MutationHook is invoked after every session mutation. rec is the record
// after the mutation, or nil when the session was destroyed.
type MutationHook func(token string, rec *Record)

// Manager is the single source of truth for "is this visitor authenticated,
// as whom, and for how much longer". All reads are total over "record present
// and well-formed" vs "absent/malformed": a malformed record behaves exactly
// like an absent one and clears itself.
type Manager struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu    sync.RWMutex
	hooks []MutationHook
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, logger *zap.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnMutation registers a hook fired on every create, extend and destroy.
func (m *Manager) OnMutation(hook MutationHook) {
	m.mu.Lock()
	m.hooks = append(m.hooks, hook)
	m.mu.Unlock()
}

// Storage layout: four logical keys per session, all derived from the access
// token. The metadata blob is authoritative; a session whose metadata is
// missing or unparseable is invalid even if the token key still exists.
func metaKey(token string) string    { return "sess:" + token + ":meta" }
func tokenKey(token string) string   { return "sess:" + token + ":token" }
func userKey(token string) string    { return "sess:" + token + ":user" }
func refreshKey(token string) string { return "sess:" + token + ":refresh" }

func sessionKeys(token string) []string {
	return []string{metaKey(token), tokenKey(token), userKey(token), refreshKey(token)}
}

// Create persists a new session record for the given access token,
// overwriting any prior record under the same token. Role and the privileged
// flag are derived together from user.Role; the expiry follows the
// role-dependent timeout policy.
func (m *Manager) Create(ctx context.Context, accessToken string, user UserInfo, refreshToken string) (*Record, error) {
	role := NormalizeRole(user.Role)
	now := m.now()

	rec := &Record{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		LoginTime:    now,
		ExpiryTime:   now.Add(TTLForRole(role)),
		Role:         role,
		Privileged:   IsPrivilegedRole(role),
	}

	if err := m.persist(ctx, rec); err != nil {
		return nil, err
	}

	m.notify(accessToken, rec)
	return rec, nil
}

// IsValid reports whether a well-formed, unexpired session exists for the
// token. Detecting an expired or corrupt record tears it down as a side
// effect before returning false: fail closed, self-cleaning.
func (m *Manager) IsValid(ctx context.Context, token string) bool {
	rec, err := m.load(ctx, token)
	if err != nil {
		m.teardown(ctx, token)
		return false
	}
	if m.now().After(rec.ExpiryTime) {
		m.teardown(ctx, token)
		return false
	}
	return true
}

// IsPrivileged reads the cached role classification; false when no record.
func (m *Manager) IsPrivileged(ctx context.Context, token string) bool {
	rec, err := m.load(ctx, token)
	if err != nil {
		return false
	}
	return rec.Privileged
}

// GetRole returns the cached normalized role, or "" when no record.
func (m *Manager) GetRole(ctx context.Context, token string) string {
	rec, err := m.load(ctx, token)
	if err != nil {
		return ""
	}
	return rec.Role
}

// GetUser returns the stored user blob, or nil when absent. It does not
// validate expiry; callers making authorization decisions must check
// IsValid first.
func (m *Manager) GetUser(ctx context.Context, token string) *UserInfo {
	raw, err := m.store.Get(ctx, userKey(token))
	if err != nil {
		return nil
	}
	var user UserInfo
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil
	}
	return &user
}

// GetAccessToken is a raw read of the stored access token, "" when absent.
func (m *Manager) GetAccessToken(ctx context.Context, token string) string {
	val, err := m.store.Get(ctx, tokenKey(token))
	if err != nil {
		return ""
	}
	return val
}

// GetRefreshToken is a raw read of the stored refresh token, "" when absent.
func (m *Manager) GetRefreshToken(ctx context.Context, token string) string {
	val, err := m.store.Get(ctx, refreshKey(token))
	if err != nil {
		return ""
	}
	return val
}

// Extend recomputes the expiry from "now" using the same role-dependent
// policy as Create. It returns false and leaves state untouched when there is
// no record to extend.
func (m *Manager) Extend(ctx context.Context, token string) bool {
	rec, err := m.load(ctx, token)
	if err != nil {
		return false
	}

	rec.ExpiryTime = m.now().Add(TTLForRole(rec.Role))
	if err := m.persist(ctx, rec); err != nil {
		m.logger.Error("failed to extend session", zap.Error(err))
		return false
	}

	m.notify(token, rec)
	return true
}

// Destroy removes all persisted keys for the token unconditionally.
// Idempotent: destroying an absent session is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.teardown(ctx, token)
}

// TimeRemaining returns the time until expiry, or 0 when the session is
// absent, malformed or already expired.
func (m *Manager) TimeRemaining(ctx context.Context, token string) time.Duration {
	rec, err := m.load(ctx, token)
	if err != nil {
		return 0
	}
	rem := rec.ExpiryTime.Sub(m.now())
	if rem < 0 {
		return 0
	}
	return rem
}

// IsExpiringSoon reports whether the session is alive but inside the warning
// window before expiry.
func (m *Manager) IsExpiringSoon(ctx context.Context, token string) bool {
	rem := m.TimeRemaining(ctx, token)
	return rem > 0 && rem < ExpiryWarning
}

func (m *Manager) load(ctx context.Context, token string) (*Record, error) {
	raw, err := m.store.Get(ctx, metaKey(token))
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("malformed session metadata: %w", err)
	}
	return &rec, nil
}

func (m *Manager) persist(ctx context.Context, rec *Record) error {
	meta, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session metadata: %w", err)
	}
	userBlob, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to marshal session user: %w", err)
	}

	ttl := rec.ExpiryTime.Sub(m.now())
	token := rec.AccessToken

	if err := m.store.Set(ctx, metaKey(token), string(meta), ttl); err != nil {
		return err
	}
	if err := m.store.Set(ctx, tokenKey(token), token, ttl); err != nil {
		return err
	}
	if err := m.store.Set(ctx, userKey(token), string(userBlob), ttl); err != nil {
		return err
	}
	if rec.RefreshToken != "" {
		if err := m.store.Set(ctx, refreshKey(token), rec.RefreshToken, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) teardown(ctx context.Context, token string) error {
	err := m.store.Delete(ctx, sessionKeys(token)...)
	if err != nil {
		m.logger.Warn("failed to clear session keys", zap.Error(err))
	}
	m.notify(token, nil)
	return err
}

func (m *Manager) notify(token string, rec *Record) {
	m.mu.RLock()
	hooks := m.hooks
	m.mu.RUnlock()

	for _, hook := range hooks {
		hook(token, rec)
	}
}
