// internal/pkg/session/watcher.go
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type EventType string

const (
	EventExpiringSoon EventType = "session:expiring"
	EventExpired      EventType = "session:expired"
)

// Event describes a lifecycle notification for a watched session.
type Event struct {
	Type      EventType
	Token     string
	User      UserInfo
	Remaining time.Duration
}

// Watcher tracks live sessions and emits expiring-soon and expired events.
// Instead of polling every session on a fixed grain, it arms one timer at the
// warning boundary and one at the expiry instant, re-armed on every mutation
// through the Manager hook. A coarse sweep remains as a backstop for records
// mutated by another node (cross-node races are accepted, last write wins).
type Watcher struct {
	manager *Manager
	notify  func(Event)
	logger  *zap.Logger

	sweepEvery time.Duration
	warning    time.Duration

	mu      sync.Mutex
	watched map[string]*armed
	stopped bool
}

type armed struct {
	rec    Record
	warn   *time.Timer
	expire *time.Timer
}

func NewWatcher(manager *Manager, notify func(Event), logger *zap.Logger) *Watcher {
	w := &Watcher{
		manager:    manager,
		notify:     notify,
		logger:     logger,
		sweepEvery: 30 * time.Second,
		warning:    ExpiryWarning,
		watched:    make(map[string]*armed),
	}
	manager.OnMutation(w.onMutation)
	return w
}

// Run blocks until ctx is cancelled, then stops every armed timer.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.shutdown()
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Watching reports how many sessions currently have armed timers.
func (w *Watcher) Watching() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watched)
}

func (w *Watcher) onMutation(token string, rec *Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if entry, ok := w.watched[token]; ok {
		entry.stop()
		delete(w.watched, token)
	}
	if rec == nil || w.stopped {
		return
	}

	untilExpiry := time.Until(rec.ExpiryTime)
	if untilExpiry <= 0 {
		return
	}

	entry := &armed{rec: *rec}
	untilWarn := untilExpiry - w.warning
	if untilWarn < 0 {
		untilWarn = 0
	}
	entry.warn = time.AfterFunc(untilWarn, func() { w.fireWarning(token) })
	entry.expire = time.AfterFunc(untilExpiry, func() { w.fireExpiry(token) })
	w.watched[token] = entry
}

func (w *Watcher) fireWarning(token string) {
	w.mu.Lock()
	entry, ok := w.watched[token]
	if !ok {
		w.mu.Unlock()
		return
	}
	user := entry.rec.User
	w.mu.Unlock()

	// Re-read the remaining time: an extend racing the timer disarms it, but
	// the callback may already be in flight.
	rem := w.manager.TimeRemaining(context.Background(), token)
	if rem <= 0 || rem >= w.warning {
		return
	}

	w.emit(Event{Type: EventExpiringSoon, Token: token, User: user, Remaining: rem})
}

func (w *Watcher) fireExpiry(token string) {
	w.mu.Lock()
	entry, ok := w.watched[token]
	if !ok {
		w.mu.Unlock()
		return
	}
	user := entry.rec.User
	w.mu.Unlock()

	// IsValid self-cleans the expired record; its destroy hook prunes the
	// watch entry.
	if w.manager.IsValid(context.Background(), token) {
		// Either an extend re-armed the entry, or the timer fired a hair
		// before the expiry instant; push the timer past the real deadline.
		rem := w.manager.TimeRemaining(context.Background(), token)
		w.mu.Lock()
		if entry, ok := w.watched[token]; ok && entry.expire != nil {
			entry.expire.Reset(rem + 10*time.Millisecond)
		}
		w.mu.Unlock()
		return
	}

	w.emit(Event{Type: EventExpired, Token: token, User: user})
}

func (w *Watcher) sweep(ctx context.Context) {
	w.mu.Lock()
	tokens := make([]string, 0, len(w.watched))
	users := make(map[string]UserInfo, len(w.watched))
	for token, entry := range w.watched {
		tokens = append(tokens, token)
		users[token] = entry.rec.User
	}
	w.mu.Unlock()

	for _, token := range tokens {
		if !w.manager.IsValid(ctx, token) {
			w.emit(Event{Type: EventExpired, Token: token, User: users[token]})
		}
	}
}

func (w *Watcher) emit(ev Event) {
	if w.notify == nil {
		return
	}
	w.notify(ev)
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for token, entry := range w.watched {
		entry.stop()
		delete(w.watched, token)
	}
	w.stopped = true
	w.logger.Info("session watcher stopped")
}

func (a *armed) stop() {
	if a.warn != nil {
		a.warn.Stop()
	}
	if a.expire != nil {
		a.expire.Stop()
	}
}
