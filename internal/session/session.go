// Package session owns the authentication state: the persisted bearer
// credential and the current user's profile. It is an explicit object
// handed to the pages that need it, with subscription semantics for
// reactive updates, rather than a process-wide singleton.
package session

import (
	"context"
	"sync"

	"github.com/alecgard/roster/internal/api"
	"github.com/alecgard/roster/internal/creds"
	"github.com/alecgard/roster/internal/httpx"
)

// AuthAPI is the slice of the gateway the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*httpx.Result[api.LoginResponse], error)
	Me(ctx context.Context) (*httpx.Result[api.Profile], error)
}

// Snapshot is the read-only view of the session handed to subscribers.
type Snapshot struct {
	Authenticated bool
	CurrentUser   *api.Profile
}

// Manager coordinates the credential store and the profile. Every change
// to the held credential, including the initial load, triggers a profile
// fetch; a fetch failure is treated as an authentication failure, never as
// transient, so the credential is cleared and no retry happens.
type Manager struct {
	mu    sync.Mutex
	creds *creds.Store
	api   AuthAPI

	user   *api.Profile
	authed bool
	subs   map[int]func(Snapshot)
	nextID int
}

// NewManager creates a Manager over the given credential store and auth API.
func NewManager(store *creds.Store, authAPI AuthAPI) *Manager {
	return &Manager{
		creds: store,
		api:   authAPI,
		subs:  make(map[int]func(Snapshot)),
	}
}

// Bootstrap loads any persisted credential and resolves the profile for it.
// With no credential present the session simply starts unauthenticated.
func (m *Manager) Bootstrap(ctx context.Context) {
	if m.creds.Read() == "" {
		m.setState(false, nil)
		return
	}
	m.refreshProfile(ctx)
}

// Login authenticates against the backend. On success the credential is
// persisted and the profile fetch populates the session; on a rejected
// login it returns false without mutating any state. A non-nil error is a
// transport failure.
func (m *Manager) Login(ctx context.Context, email, password string) (bool, error) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		return false, err
	}
	if !res.Success || res.Data == nil || res.Data.AccessToken == "" {
		return false, nil
	}

	if err := m.creds.Write(res.Data.AccessToken); err != nil {
		return false, err
	}

	// Credential changed: resolve the profile for it. Login itself has
	// succeeded even if this follow-up fetch clears the session again.
	m.refreshProfile(ctx)
	return true, nil
}

// Logout synchronously clears the credential and the profile.
func (m *Manager) Logout() {
	_ = m.creds.Clear()
	m.setState(false, nil)
}

// IsAuthenticated reports whether a profile was resolved for the held
// credential.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authed
}

// CurrentUser returns the resolved profile, or nil when unauthenticated.
func (m *Manager) CurrentUser() *api.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Subscribe registers fn to be called on every session change. The returned
// function unsubscribes.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// refreshProfile fetches the current profile for the held credential. Any
// failure, transport or server-reported, clears the persisted credential
// and marks the session unauthenticated.
func (m *Manager) refreshProfile(ctx context.Context) {
	res, err := m.api.Me(ctx)
	if err != nil || !res.Success || res.Data == nil {
		_ = m.creds.Clear()
		m.setState(false, nil)
		return
	}
	m.setState(true, res.Data)
}

func (m *Manager) setState(authed bool, user *api.Profile) {
	m.mu.Lock()
	m.authed = authed
	m.user = user
	snap := Snapshot{Authenticated: authed, CurrentUser: user}
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
