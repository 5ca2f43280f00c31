package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestWatcher(t *testing.T, warning time.Duration) (*Manager, *Watcher, chan Event) {
	t.Helper()

	m := NewManager(NewMemoryStore(), zap.NewNop())
	events := make(chan Event, 16)
	w := NewWatcher(m, func(ev Event) { events <- ev }, zap.NewNop())
	w.warning = warning
	return m, w, events
}

// armShortLived persists a record expiring after ttl and arms the watcher for
// it, bypassing the role policy so the test runs on real timers.
func armShortLived(t *testing.T, m *Manager, token string, ttl time.Duration) {
	t.Helper()

	now := time.Now()
	rec := &Record{
		AccessToken: token,
		User:        testUser(RoleAdmin),
		LoginTime:   now,
		ExpiryTime:  now.Add(ttl),
		Role:        RoleAdmin,
		Privileged:  true,
	}
	require.NoError(t, m.persist(context.Background(), rec))
	m.notify(token, rec)
}

func TestWatcherEmitsWarningThenExpiry(t *testing.T) {
	m, w, events := newTestWatcher(t, 150*time.Millisecond)

	armShortLived(t, m, "tok", 300*time.Millisecond)
	require.Equal(t, 1, w.Watching())

	select {
	case ev := <-events:
		assert.Equal(t, EventExpiringSoon, ev.Type)
		assert.Equal(t, "tok", ev.Token)
		assert.Greater(t, ev.Remaining, time.Duration(0))
	case <-time.After(time.Second):
		t.Fatal("no expiring-soon event")
	}

	select {
	case ev := <-events:
		assert.Equal(t, EventExpired, ev.Type)
		assert.Equal(t, "tok", ev.Token)
	case <-time.After(time.Second):
		t.Fatal("no expired event")
	}

	// The expiry check self-cleaned the record and pruned the watch entry.
	assert.False(t, m.IsValid(context.Background(), "tok"))
	assert.Zero(t, w.Watching())
}

func TestWatcherDisarmsOnDestroy(t *testing.T) {
	ctx := context.Background()
	m, w, events := newTestWatcher(t, ExpiryWarning)

	_, err := m.Create(ctx, "tok", testUser(RoleUser), "")
	require.NoError(t, err)
	require.Equal(t, 1, w.Watching())

	require.NoError(t, m.Destroy(ctx, "tok"))
	assert.Zero(t, w.Watching())

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after explicit logout: %v", ev.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcherRearmsOnExtend(t *testing.T) {
	ctx := context.Background()
	m, w, _ := newTestWatcher(t, ExpiryWarning)

	_, err := m.Create(ctx, "tok", testUser(RoleConsultant), "")
	require.NoError(t, err)
	require.Equal(t, 1, w.Watching())

	require.True(t, m.Extend(ctx, "tok"))
	assert.Equal(t, 1, w.Watching(), "extend replaces the armed timers, not drops them")
}

func TestWatcherShutdownCancelsTimers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, w, _ := newTestWatcher(t, ExpiryWarning)

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	_, err := m.Create(context.Background(), "tok", testUser(RoleUser), "")
	require.NoError(t, err)
	require.Equal(t, 1, w.Watching())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.Zero(t, w.Watching())

	// Mutations after shutdown must not leak timers.
	_, err = m.Create(context.Background(), "tok2", testUser(RoleUser), "")
	require.NoError(t, err)
	assert.Zero(t, w.Watching())
}
