package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ashiruhammed/farmstarter/internal/store"
)

// User is one account in the registry. Accounts are immutable once
// created; there is no edit or delete.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Manager owns the current session and the user registry. Login and
// signup read the registry from the store on every call; the registry
// is seeded from the bundled default list the first time it is missing.
//
// Credential mismatches and duplicate usernames are ordinary boolean
// failures. Storage faults are caught at this boundary, logged, and
// reported as failure — they never escape as errors.
type Manager struct {
	mu      sync.Mutex
	current *User
	loading bool

	st       store.Store
	verifier Verifier
	seed     []User
	log      logrus.FieldLogger

	// injectable for tests; new account IDs are derived from the clock,
	// which is not collision-proof under rapid successive signups
	now func() time.Time
}

func NewManager(st store.Store, verifier Verifier, seed []User, log logrus.FieldLogger) *Manager {
	return &Manager{
		loading:  true,
		st:       st,
		verifier: verifier,
		seed:     seed,
		log:      log,
		now:      time.Now,
	}
}

// Restore adopts a previously persisted session, if any, without
// re-validating credentials against the registry. Call once at startup;
// auth-dependent decisions are gated on Loading until it returns.
func (m *Manager) Restore(ctx context.Context) {
	var current *User
	b, err := m.st.Get(ctx, store.KeySession)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		m.log.WithError(err).Warn("auth: session restore failed, starting unauthenticated")
	default:
		var u User
		if err := json.Unmarshal(b, &u); err != nil {
			m.log.WithError(err).Warn("auth: stored session unreadable, starting unauthenticated")
		} else {
			current = &u
		}
	}

	m.mu.Lock()
	m.current = current
	m.loading = false
	m.mu.Unlock()
}

func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// CurrentUser reports the session holder, if any.
func (m *Manager) CurrentUser() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return User{}, false
	}
	return *m.current, true
}

// Login scans the registry for an exact username/credential match and,
// on success, makes that account the current session. Returns false for
// a mismatch and for storage faults alike. The lock is held across the
// registry read so a login never observes a half-applied signup.
func (m *Manager) Login(ctx context.Context, username, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.registryLocked(ctx)
	if err != nil {
		m.log.WithError(err).Warn("auth: login could not read registry")
		return false
	}

	for _, u := range users {
		if u.Username == username && m.verifier.Verify(u.Password, password) {
			m.setSessionLocked(ctx, u)
			return true
		}
	}
	return false
}

// Signup creates a new account, appends it to the registry, and logs it
// in. Returns false when the username is taken or the registry cannot
// be read or written; a failed signup leaves registry and session
// untouched. The read-scan-append-write sequence runs under the lock:
// concurrent signups are serialized, so the username-uniqueness check
// always sees every account the previous signup wrote.
func (m *Manager) Signup(ctx context.Context, username, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, err := m.registryLocked(ctx)
	if err != nil {
		m.log.WithError(err).Warn("auth: signup could not read registry")
		return false
	}

	for _, u := range users {
		if u.Username == username {
			return false
		}
	}

	newUser := User{
		ID:       m.now().UnixMilli(),
		Username: username,
		Password: password,
	}
	users = append(users, newUser)

	if err := m.writeRegistry(ctx, users); err != nil {
		m.log.WithError(err).Warn("auth: signup could not persist registry")
		return false
	}

	m.setSessionLocked(ctx, newUser)
	return true
}

// Logout clears the session in memory and in the store.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.st.Delete(ctx, store.KeySession); err != nil {
		m.log.WithError(err).Warn("auth: could not clear persisted session")
	}
}

// registryLocked loads all accounts, seeding the store on first access.
// Callers hold m.mu.
func (m *Manager) registryLocked(ctx context.Context) ([]User, error) {
	b, err := m.st.Get(ctx, store.KeyUsers)
	if errors.Is(err, store.ErrNotFound) {
		if err := m.writeRegistry(ctx, m.seed); err != nil {
			return nil, err
		}
		return append([]User(nil), m.seed...), nil
	}
	if err != nil {
		return nil, err
	}

	var users []User
	if err := json.Unmarshal(b, &users); err != nil {
		return nil, errors.Wrap(err, "parse user registry")
	}
	return users, nil
}

func (m *Manager) writeRegistry(ctx context.Context, users []User) error {
	if users == nil {
		users = []User{}
	}
	b, err := json.Marshal(users)
	if err != nil {
		return errors.Wrap(err, "marshal user registry")
	}
	return m.st.Set(ctx, store.KeyUsers, b)
}

// setSessionLocked adopts the user in memory and persists the session
// record. A failed persist only costs restore-after-restart, so it is
// logged and the in-memory session stands. Callers hold m.mu.
func (m *Manager) setSessionLocked(ctx context.Context, u User) {
	m.current = &u

	b, err := json.Marshal(u)
	if err != nil {
		m.log.WithError(err).Error("auth: session marshal failed")
		return
	}
	if err := m.st.Set(ctx, store.KeySession, b); err != nil {
		m.log.WithError(err).Warn("auth: could not persist session")
	}
}
