package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// Keys of the two durable entries backing the session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// SessionStore is the single source of truth for who is logged in. One
// instance is built at startup and handed to every component that needs it.
type SessionStore struct {
	kv  ports.KeyValueStore
	log zerolog.Logger

	mu        sync.RWMutex
	session   domain.Session
	hydrated  bool
	listeners map[int]func(domain.Session)
	nextID    int
}

// NewSessionStore returns an empty, not yet hydrated store.
func NewSessionStore(kv ports.KeyValueStore, log zerolog.Logger) *SessionStore {
	return &SessionStore{
		kv:        kv,
		log:       log.With().Str("component", "session_store").Logger(),
		listeners: make(map[int]func(domain.Session)),
	}
}

// Bootstrap loads the persisted session. A stored identity that does not
// parse, or that has no token next to it, is wiped and leaves the store
// logged out. Storage read
// failures also leave the store logged out but are returned to the caller.
func (s *SessionStore) Bootstrap(ctx context.Context) error {
	sess, err := s.load(ctx)

	s.mu.Lock()
	s.session = sess
	s.hydrated = true
	s.mu.Unlock()

	s.notify(sess)
	return err
}

func (s *SessionStore) load(ctx context.Context) (domain.Session, error) {
	token, _, err := s.kv.Get(ctx, KeyToken)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session bootstrap: read token: %w", err)
	}

	raw, ok, err := s.kv.Get(ctx, KeyUser)
	if err != nil {
		return domain.Session{}, fmt.Errorf("session bootstrap: read user: %w", err)
	}
	if token == "" {
		if ok && raw != "" {
			s.log.Warn().Msg("stored identity without a token, clearing it")
			if delErr := s.kv.Delete(ctx, KeyUser); delErr != nil {
				s.log.Error().Err(delErr).Msg("failed to clear orphaned identity")
			}
		}
		return domain.Session{}, nil
	}
	if !ok || raw == "" {
		s.log.Warn().Msg("token restored without a stored identity")
		return domain.Session{Token: token}, nil
	}

	var id domain.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		s.log.Warn().Err(err).Msg("invalid user data in storage, clearing session")
		if delErr := s.kv.Delete(ctx, KeyToken, KeyUser); delErr != nil {
			s.log.Error().Err(delErr).Msg("failed to clear corrupt session")
		}
		return domain.Session{}, nil
	}

	return domain.Session{Token: token, Identity: &id}, nil
}

// Login replaces whatever session exists. The credential is not inspected.
// Memory is updated before storage so the running process never lags behind;
// a persistence failure is reported but does not undo the login.
func (s *SessionStore) Login(ctx context.Context, token string, id domain.Identity) error {
	ident := id
	sess := domain.Session{Token: token, Identity: &ident}

	s.mu.Lock()
	s.session = sess
	s.hydrated = true
	s.mu.Unlock()

	s.notify(sess)

	payload, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("session login: encode user: %w", err)
	}
	if err := s.kv.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("session login: persist token: %w", err)
	}
	if err := s.kv.Set(ctx, KeyUser, string(payload)); err != nil {
		return fmt.Errorf("session login: persist user: %w", err)
	}

	s.log.Info().Int64("user_id", id.UserID).Str("role", string(id.Role)).Msg("session started")
	return nil
}

// Logout clears memory and storage. Calling it twice is harmless.
func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated := s.session.Authenticated()
	s.session = domain.Session{}
	s.mu.Unlock()

	if wasAuthenticated {
		s.notify(domain.Session{})
		s.log.Info().Msg("session ended")
	}

	if err := s.kv.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("session logout: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current session.
func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	if out.Identity != nil {
		id := *out.Identity
		out.Identity = &id
	}
	return out
}

// IsAuthenticated is true whenever a credential is held, even if the
// identity could not be restored.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

func (s *SessionStore) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

// Subscribe registers fn for every subsequent session change.
func (s *SessionStore) Subscribe(fn func(domain.Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) notify(sess domain.Session) {
	s.mu.RLock()
	fns := make([]func(domain.Session), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(sess)
	}
}
