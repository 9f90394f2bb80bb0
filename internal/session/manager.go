package session

import (
	"log/slog"
	"sync"
	"time"
)

// Manager owns the in-memory session context map and, when configured, its
// on-disk mirror (spec §3 ownership note). A single writer per session id is
// enforced by a per-manager mutex; this is not a hot path, so a single lock
// is simpler than the orchestrator's lock-free-equivalent read path and
// matches the spec's "single writer per session id" requirement exactly.
type Manager struct {
	mu       sync.Mutex
	contexts map[string]*Context
	storage  *store
	logger   *slog.Logger

	codeLimit  int
	convLimit  int
	execLimit  int
}

// NewManager creates a session manager. storageDir may be empty to disable
// persistence entirely. Limits are clamped to the spec's ceilings
// (20/30/20) by config.Config.Validate before reaching here, but are
// clamped again defensively.
func NewManager(storageDir string, codeLimit, convLimit, execLimit int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if codeLimit <= 0 || codeLimit > 20 {
		codeLimit = 20
	}
	if convLimit <= 0 || convLimit > 30 {
		convLimit = 30
	}
	if execLimit <= 0 || execLimit > 20 {
		execLimit = 20
	}
	return &Manager{
		contexts:  make(map[string]*Context),
		storage:   newStore(storageDir, logger),
		logger:    logger,
		codeLimit: codeLimit,
		convLimit: convLimit,
		execLimit: execLimit,
	}
}

// CreateContext creates a new session context. Returns (nil, false) if the
// session id is already present — spec §8's "creating a session that
// already exists returns a negative ack".
func (m *Manager) CreateContext(sessionID string, metadata map[string]any) (*Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.contexts[sessionID]; exists {
		return nil, false
	}

	ctx := newContext(sessionID, metadata)
	m.contexts[sessionID] = ctx
	m.persist(ctx)
	return ctx, true
}

// GetContext returns a session's context, lazily loading it from disk on an
// in-memory miss.
func (m *Manager) GetContext(sessionID string) (*Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(sessionID)
}

func (m *Manager) getLocked(sessionID string) (*Context, bool) {
	if ctx, ok := m.contexts[sessionID]; ok {
		return ctx, true
	}
	if ctx, ok := m.storage.load(sessionID); ok {
		m.contexts[sessionID] = ctx
		return ctx, true
	}
	return nil, false
}

// ListSessions returns all known session ids.
func (m *Manager) ListSessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.contexts))
	for id := range m.contexts {
		out = append(out, id)
	}
	return out
}

// DeleteContext removes a session from memory and disk.
func (m *Manager) DeleteContext(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, existed := m.contexts[sessionID]
	delete(m.contexts, sessionID)
	m.storage.delete(sessionID)
	return existed
}

// PruneIdle deletes every session whose context has gone untouched for
// longer than maxIdle, in memory and on disk, and returns how many were
// removed. Intended to be run periodically (see scheduler.Scheduler) so a
// long-lived server doesn't accumulate abandoned sessions forever.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().UTC().Add(-maxIdle)
	removed := 0
	for id, ctx := range m.contexts {
		if ctx.UpdatedAt.Before(cutoff) {
			delete(m.contexts, id)
			m.storage.delete(id)
			removed++
		}
	}
	return removed
}

// persist writes ctx to disk best-effort. Failures never affect the
// in-memory state, which remains authoritative (spec §4.4/§9).
func (m *Manager) persist(ctx *Context) {
	if err := m.storage.save(ctx); err != nil {
		m.logger.Warn("session persistence failed", "session_id", ctx.SessionID, "error", err)
	}
}
