// Package session holds who is logged in. A Session is created once per
// client and handed to everything that talks to the backend.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/franckalain/fittrack/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Keys used in the durable store.
const (
	TokenKey = "fittrack_token"
	UserKey  = "fittrack_user"
)

// ErrNoToken is returned by Begin when the token is empty.
var ErrNoToken = errors.New("empty token")

// Store persists session state across restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// State of a session.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is safe for concurrent use.
type Session struct {
	mu    sync.RWMutex
	store Store
	token string
	user  *models.User
}

// New returns an anonymous session backed by store. A nil store keeps the
// session in memory only.
func New(store Store) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Session{store: store}
}

// Begin moves the session to Authenticated and persists token and user.
func (s *Session) Begin(ctx context.Context, token string, user *models.User) error {
	if token == "" {
		return ErrNoToken
	}
	if err := s.store.Put(ctx, TokenKey, token); err != nil {
		return errors.Wrap(err, "persist token")
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return errors.Wrap(err, "encode user")
		}
		if err := s.store.Put(ctx, UserKey, string(raw)); err != nil {
			return errors.Wrap(err, "persist user")
		}
	}

	s.mu.Lock()
	s.token = token
	s.user = copyUser(user)
	s.mu.Unlock()
	return nil
}

// End logs out: the in-memory state is cleared even if the store fails.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, TokenKey); err != nil {
		return errors.Wrap(err, "delete token")
	}
	if err := s.store.Delete(ctx, UserKey); err != nil {
		return errors.Wrap(err, "delete user")
	}
	return nil
}

// Restore reloads a persisted session. It reports whether one was found.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return false, errors.Wrap(err, "read token")
	}
	if !ok || token == "" {
		return false, nil
	}

	var user *models.User
	if raw, ok, err := s.store.Get(ctx, UserKey); err != nil {
		return false, errors.Wrap(err, "read user")
	} else if ok {
		user = &models.User{}
		if err := json.Unmarshal([]byte(raw), user); err != nil {
			user = nil
		}
	}
	if user == nil {
		user = UserFromToken(token)
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
	return true, nil
}

// Token returns the bearer token, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// State reports whether a token is held.
func (s *Session) State() State {
	if s.Token() == "" {
		return Anonymous
	}
	return Authenticated
}

// UserFromToken builds a display profile from the claims of a JWT. The
// signature is not checked. Tokens that are not JWTs get the demo profile.
func UserFromToken(token string) *models.User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return &models.User{ID: 1, Username: "Demo User", Email: "demo@example.com"}
	}

	user := &models.User{}
	for _, k := range []string{"username", "name", "sub"} {
		if v, ok := claims[k].(string); ok && v != "" {
			user.Username = v
			break
		}
	}
	if v, ok := claims["email"].(string); ok {
		user.Email = v
	}
	switch id := claims["user_id"].(type) {
	case float64:
		user.ID = int(id)
	case int64:
		user.ID = int(id)
	}
	if user.Username == "" {
		user.Username = user.Email
	}
	return user
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.Goals != nil {
		g := *u.Goals
		c.Goals = &g
	}
	return &c
}

// MemoryStore is a Store that forgets everything on exit.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: map[string]string{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.m[key]
	return v, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
	return nil
}
