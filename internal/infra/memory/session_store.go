package memory

import (
	"context"
	"sync"
	"time"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions idle for longer than ttl are treated as gone; a zero ttl keeps them forever.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[string]storedSession
}

type storedSession struct {
	session   app.PlaySession
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Get(_ context.Context, id string) (app.PlaySession, error) {
	s.mu.RLock()
	stored, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return app.PlaySession{}, domain.ErrSessionNotFound
	}
	if s.ttl > 0 && !stored.expiresAt.After(s.clock()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return app.PlaySession{}, domain.ErrSessionNotFound
	}
	return stored.session, nil
}

func (s *SessionStore) Put(_ context.Context, session app.PlaySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = storedSession{
		session:   session,
		expiresAt: s.clock().Add(s.ttl),
	}
	return nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
