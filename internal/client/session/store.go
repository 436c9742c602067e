package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jimalvess/diario-cli/internal/logging"
)

var ErrEmptyToken = errors.New("session token must not be empty")

// Listener is notified with the new session after every Login and Logout.
type Listener func(Session)

// Store is the single source of truth for the auth session.
type Store struct {
	mu   sync.RWMutex
	cur  Session
	subs map[int]Listener
	next int

	persist Persistence
	log     logging.Logger
}

// NewStore returns an empty store. A nil Persistence keeps the session in
// memory only.
func NewStore(p Persistence, log logging.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{
		subs:    make(map[int]Listener),
		persist: p,
		log:     log.With("component", "session"),
	}
}

// Load initializes the store from persistence. It is called once at startup.
func (s *Store) Load(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	cur, err := s.persist.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.cur = cur
	s.mu.Unlock()

	s.log.Debug(ctx, "session loaded", "authenticated", cur.Valid())
	return nil
}

// Login persists sess and makes it current. On a persistence failure the
// previous session stays in place.
func (s *Store) Login(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		return ErrEmptyToken
	}
	if s.persist != nil {
		if err := s.persist.Save(ctx, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	s.mu.Lock()
	s.cur = sess
	s.mu.Unlock()

	s.log.Info(ctx, "logged in", "user_id", sess.UserID)
	s.notify(sess)
	return nil
}

// Logout forgets the session. The in-memory session is cleared even when
// persistence fails, and that failure is returned.
func (s *Store) Logout(ctx context.Context) error {
	var err error
	if s.persist != nil {
		if cerr := s.persist.Clear(ctx); cerr != nil {
			err = fmt.Errorf("clear session: %w", cerr)
		}
	}

	s.mu.Lock()
	s.cur = Session{}
	s.mu.Unlock()

	s.log.Info(ctx, "logged out")
	s.notify(Session{})
	return err
}

func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Token implements the HTTP client's token source.
func (s *Store) Token() string {
	return s.Current().Token
}

func (s *Store) IsAuthenticated() bool {
	return s.Current().Valid()
}

// Subscribe registers fn and returns a function that unregisters it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(sess Session) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(sess)
	}
}
