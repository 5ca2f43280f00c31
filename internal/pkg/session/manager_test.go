package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T) (*Manager, *MemoryStore, *fakeClock) {
	t.Helper()
	store := NewMemoryStore()
	clock := newFakeClock()
	m := NewManager(store, zap.NewNop(), WithClock(clock.Now))
	return m, store, clock
}

func testUser(role string) UserInfo {
	return UserInfo{ID: 42, Role: role, FullName: "Jane Doe", Email: "jane@example.com"}
}

func TestCreateAppliesRoleTimeoutPolicy(t *testing.T) {
	ctx := context.Background()

	for _, role := range []string{RoleAdmin, RoleConsultant, RoleManager, RoleStaff} {
		m, _, _ := newTestManager(t)
		rec, err := m.Create(ctx, "tok-"+role, testUser(role), "")
		require.NoError(t, err)
		assert.Equal(t, 30*time.Minute, rec.ExpiryTime.Sub(rec.LoginTime), "role %s", role)
		assert.True(t, rec.Privileged, "role %s", role)
	}

	m, _, _ := newTestManager(t)
	rec, err := m.Create(ctx, "tok-user", testUser(RoleUser), "")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, rec.ExpiryTime.Sub(rec.LoginTime))
	assert.False(t, rec.Privileged)
}

func TestCreateNormalizesRole(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	rec, err := m.Create(ctx, "tok", testUser("  Admin "), "")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, rec.Role)
	assert.True(t, rec.Privileged)
	assert.Equal(t, RoleAdmin, m.GetRole(ctx, "tok"))
	assert.True(t, m.IsPrivileged(ctx, "tok"))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	user := testUser(RoleUser)
	user.Metadata = map[string]interface{}{"plan": "premium"}
	_, err := m.Create(ctx, "tok", user, "refresh-tok")
	require.NoError(t, err)

	assert.Equal(t, "tok", m.GetAccessToken(ctx, "tok"))
	assert.Equal(t, "refresh-tok", m.GetRefreshToken(ctx, "tok"))

	got := m.GetUser(ctx, "tok")
	require.NotNil(t, got)
	assert.Equal(t, user, *got)
}

func TestIsValidExpiredSessionSelfCleans(t *testing.T) {
	ctx := context.Background()
	m, store, clock := newTestManager(t)

	_, err := m.Create(ctx, "tok", testUser(RoleAdmin), "")
	require.NoError(t, err)
	require.True(t, m.IsValid(ctx, "tok"))

	clock.Advance(31 * time.Minute)

	assert.False(t, m.IsValid(ctx, "tok"))
	assert.Nil(t, m.GetUser(ctx, "tok"), "storage must be cleared after expiry detection")
	assert.Empty(t, m.GetAccessToken(ctx, "tok"))
	assert.Zero(t, store.Len())
}

func TestIsValidMalformedMetadataSelfCleans(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)

	_, err := m.Create(ctx, "tok", testUser(RoleUser), "")
	require.NoError(t, err)

	// Corrupt the metadata blob while the token key is still present.
	require.NoError(t, store.Set(ctx, metaKey("tok"), "{not json", 0))

	assert.False(t, m.IsValid(ctx, "tok"))
	assert.Zero(t, store.Len(), "all keys must be cleared, the stray token key included")
	assert.Nil(t, m.GetUser(ctx, "tok"))
}

func TestIsValidAbsentSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.False(t, m.IsValid(context.Background(), "never-created"))
}

func TestIsValidFailsClosedOnStoreError(t *testing.T) {
	m := NewManager(failingStore{}, zap.NewNop())
	assert.False(t, m.IsValid(context.Background(), "tok"))
}

func TestExtendWithoutRecord(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(t)

	assert.False(t, m.Extend(ctx, "tok"))
	assert.Zero(t, store.Len(), "extend must not create a record")
}

func TestExtendRecomputesExpiryFromNow(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newTestManager(t)

	rec, err := m.Create(ctx, "tok", testUser(RoleConsultant), "")
	require.NoError(t, err)
	before := rec.ExpiryTime

	clock.Advance(10 * time.Minute)
	require.True(t, m.Extend(ctx, "tok"))

	assert.Equal(t, 30*time.Minute, m.TimeRemaining(ctx, "tok"))
	assert.True(t, before.Before(clock.Now().Add(30*time.Minute)), "expiry must strictly increase")
}

func TestDestroyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	_, err := m.Create(ctx, "tok", testUser(RoleUser), "")
	require.NoError(t, err)

	require.NoError(t, m.Destroy(ctx, "tok"))
	assert.False(t, m.IsValid(ctx, "tok"))
	require.NoError(t, m.Destroy(ctx, "tok"))
	assert.False(t, m.IsValid(ctx, "tok"))
}

func TestTimeRemaining(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newTestManager(t)

	assert.Zero(t, m.TimeRemaining(ctx, "tok"))

	_, err := m.Create(ctx, "tok", testUser(RoleStaff), "")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, m.TimeRemaining(ctx, "tok"))

	clock.Advance(12 * time.Minute)
	assert.Equal(t, 18*time.Minute, m.TimeRemaining(ctx, "tok"))

	clock.Advance(20 * time.Minute)
	assert.Zero(t, m.TimeRemaining(ctx, "tok"))
}

func TestIsExpiringSoon(t *testing.T) {
	ctx := context.Background()
	m, _, clock := newTestManager(t)

	_, err := m.Create(ctx, "tok", testUser(RoleAdmin), "")
	require.NoError(t, err)
	assert.False(t, m.IsExpiringSoon(ctx, "tok"), "full timeout exceeds the warning window")

	clock.Advance(26 * time.Minute)
	assert.True(t, m.IsExpiringSoon(ctx, "tok"))

	require.True(t, m.Extend(ctx, "tok"))
	assert.False(t, m.IsExpiringSoon(ctx, "tok"), "extend resets the full timeout")

	clock.Advance(31 * time.Minute)
	assert.False(t, m.IsExpiringSoon(ctx, "tok"), "an already-expired session is not expiring soon")
}

func TestMutationHooks(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)

	var mu sync.Mutex
	var calls []string
	m.OnMutation(func(token string, rec *Record) {
		mu.Lock()
		defer mu.Unlock()
		if rec == nil {
			calls = append(calls, token+":destroyed")
			return
		}
		calls = append(calls, token+":mutated")
	})

	_, err := m.Create(ctx, "tok", testUser(RoleUser), "")
	require.NoError(t, err)
	require.True(t, m.Extend(ctx, "tok"))
	require.NoError(t, m.Destroy(ctx, "tok"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"tok:mutated", "tok:mutated", "tok:destroyed"}, calls)
}

// failingStore simulates a broken backend; every operation errors.
type failingStore struct{}

var errStoreDown = errors.New("store down")

func (failingStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return errStoreDown
}

func (failingStore) Get(ctx context.Context, key string) (string, error) {
	return "", errStoreDown
}

func (failingStore) Delete(ctx context.Context, keys ...string) error {
	return errStoreDown
}
