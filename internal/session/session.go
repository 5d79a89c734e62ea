// Package session holds the authenticated user and token for one process.
// A Session is created explicitly, restored from durable storage, and torn
// down by Logout. Nothing here is global.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/logger"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/validate"
)

// Durable storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is durable key/value storage. *store.Store satisfies it.
type Storage interface {
	Get(key string) (string, bool, error)
	SetMany(entries map[string]string) error
	Delete(keys ...string) error
}

// Authenticator performs the auth calls. *api.Client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) (model.AuthResult, error)
	Register(ctx context.Context, reg model.Registration) (model.AuthResult, error)
	Me(ctx context.Context) (model.User, error)
}

// Session is safe for concurrent use.
type Session struct {
	storage Storage
	auth    Authenticator
	now     func() time.Time
	log     *zap.SugaredLogger

	mu    sync.RWMutex
	token string
	user  *model.User
}

// New creates an empty, unauthenticated session.
func New(storage Storage, auth Authenticator) *Session {
	return &Session{
		storage: storage,
		auth:    auth,
		now:     time.Now,
		log:     logger.Named("session"),
	}
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a token and user are held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// Require returns ErrNotAuthenticated when logged out.
func (s *Session) Require() error {
	if !s.Authenticated() {
		return apperr.ErrNotAuthenticated
	}
	return nil
}

// Restore loads a persisted session and revalidates it against the server.
// Any failure leaves the session logged out; nothing is returned to the
// caller because a stale session is an ordinary state, not an error.
func (s *Session) Restore(ctx context.Context) {
	token, user, ok := s.load()
	if !ok {
		return
	}

	// Optimistic restore so the token is available for revalidation.
	s.set(token, user)

	if expired(token, s.now()) {
		s.log.Debugw("persisted token expired, clearing session")
		s.Logout()
		return
	}

	fresh, err := s.auth.Me(ctx)
	if err != nil {
		s.log.Debugw("session revalidation failed, clearing session", "error", err)
		s.Logout()
		return
	}

	s.set(token, fresh)
	if err := s.persist(token, fresh); err != nil {
		s.log.Warnw("could not persist refreshed user", "error", err)
	}
}

// Login authenticates and persists the session.
func (s *Session) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	if err := validate.Credentials(&creds); err != nil {
		return model.User{}, err
	}
	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return model.User{}, err
	}
	return s.establish(res)
}

// Register creates an account and persists the session.
func (s *Session) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	if err := validate.Registration(&reg); err != nil {
		return model.User{}, err
	}
	res, err := s.auth.Register(ctx, reg)
	if err != nil {
		return model.User{}, err
	}
	return s.establish(res)
}

// Logout clears the session in memory and in storage. It always succeeds
// from the caller's point of view.
func (s *Session) Logout() {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Delete(KeyToken, KeyUser); err != nil {
		s.log.Warnw("could not clear persisted session", "error", err)
	}
}

func (s *Session) establish(res model.AuthResult) (model.User, error) {
	s.set(res.Token, res.User)
	if err := s.persist(res.Token, res.User); err != nil {
		return res.User, err
	}
	return res.User, nil
}

func (s *Session) set(token string, user model.User) {
	s.mu.Lock()
	s.token = token
	s.user = &user
	s.mu.Unlock()
}

func (s *Session) persist(token string, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.SetMany(map[string]string{KeyToken: token, KeyUser: string(raw)})
}

func (s *Session) load() (string, model.User, bool) {
	token, okTok, err := s.storage.Get(KeyToken)
	if err != nil {
		s.log.Warnw("could not read persisted token", "error", err)
		return "", model.User{}, false
	}
	raw, okUser, err := s.storage.Get(KeyUser)
	if err != nil {
		s.log.Warnw("could not read persisted user", "error", err)
		return "", model.User{}, false
	}
	if !okTok || !okUser || token == "" {
		return "", model.User{}, false
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Debugw("persisted user unreadable, clearing session", "error", err)
		s.Logout()
		return "", model.User{}, false
	}
	return token, user, true
}

// expired reports whether token is a JWT whose exp claim has passed. The
// signature is not checked; that is the server's job. Opaque tokens are
// never considered expired here.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
