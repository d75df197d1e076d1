// Package session owns the in-memory "who is logged in" state derived
// from the credential store. It is the single source of truth the view
// layer consults; it never navigates on its own.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MikhailDrugie/se-attack-modeling/internal/api"
	"github.com/MikhailDrugie/se-attack-modeling/internal/creds"
	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// Backend is the slice of the API client the session layer needs.
type Backend interface {
	Login(ctx context.Context, username, password string) (*api.LoginResult, error)
	Me(ctx context.Context) (*model.User, error)
}

// Manager tracks the current user and the restore-in-progress flag.
//
// Concurrency: the TUI and CLI call in from one goroutine at a time,
// but the client's forced-logout hook can fire from any request
// goroutine, so all state is mutex-guarded. Token commits follow
// "most recent store write wins": a login commits its token only if
// the store generation is unchanged since the call started (a Clear
// in between means the session was just torn down and the result is
// abandoned), while a stale 401 arriving after a successful login is
// ignored by the client's token comparison, never clearing the new
// credential.
type Manager struct {
	creds   creds.Store
	backend Backend
	log     *slog.Logger

	mu       sync.Mutex
	user     *model.User
	loading  bool
	onChange func()
}

// NewManager wires a session manager to the credential store and API
// client. The caller is expected to register ForcedLogout as the
// client's unauthorized callback.
func NewManager(store creds.Store, backend Backend, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{creds: store, backend: backend, log: log}
}

// OnChange registers a notification for session state transitions.
// Used by the TUI to re-evaluate its route guard.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// CurrentUser returns the cached profile, if a session exists.
func (m *Manager) CurrentUser() (*model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, false
	}
	u := *m.user
	return &u, true
}

// IsLoading reports whether the initial session restore is in flight.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Login authenticates and, on success, persists the token and caches
// the returned profile. On failure the store is left untouched and the
// error propagates; the caller decides how to present it.
//
// The token is committed only if no Clear happened while the request
// was in flight: a logout, forced or explicit, bumps the store
// generation, and a login completing after one must not resurrect a
// session that was just torn down.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	startGen := m.creds.Generation()
	result, err := m.backend.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if m.creds.Generation() != startGen {
		m.log.Debug("login superseded by logout", "user", username)
		return fmt.Errorf("session was cleared during login, please retry")
	}

	if err := m.creds.SetToken(result.AccessToken); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	user := result.User
	if err := m.creds.SetUser(&user); err != nil {
		m.log.Warn("caching profile failed", "error", err)
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()
	m.notify()

	m.log.Debug("login succeeded", "user", user.Username, "role", user.Role.String())
	return nil
}

// Restore re-establishes the session on startup. With no stored token
// it is a no-op. With one, the profile is fetched eagerly; if the token
// turned out stale the client's 401 hook has already cleared the store,
// and the session ends with no user. The loading flag always resolves,
// failure paths included.
func (m *Manager) Restore(ctx context.Context) error {
	if m.creds.Token() == "" {
		return nil
	}

	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()
	m.notify()

	user, err := m.backend.Me(ctx)

	m.mu.Lock()
	m.loading = false
	if err != nil {
		m.user = nil
	} else {
		m.user = user
	}
	m.mu.Unlock()
	m.notify()

	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if cacheErr := m.creds.SetUser(user); cacheErr != nil {
		m.log.Warn("caching profile failed", "error", cacheErr)
	}
	return nil
}

// Logout clears credentials and the cached user synchronously. It does
// not navigate; that stays a view-layer concern.
func (m *Manager) Logout() {
	if err := m.creds.Clear(); err != nil {
		m.log.Error("clearing credentials on logout", "error", err)
	}
	m.mu.Lock()
	m.user = nil
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

// ForcedLogout is the client's 401 callback. The store was already
// cleared by the gateway client; only the in-memory view of the
// session needs to drop so no stale profile survives.
func (m *Manager) ForcedLogout() {
	m.mu.Lock()
	m.user = nil
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
