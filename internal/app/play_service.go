package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"brainscore-quiz-service/internal/domain"
	"brainscore-quiz-service/internal/engine"
)

// PlaySession is what a SessionRepository persists: the quiz as it was when the
// session started, and the engine state on top of it.
type PlaySession struct {
	ID        string          `json:"id"`
	Quiz      domain.Quiz     `json:"quiz"`
	State     engine.Snapshot `json:"state"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SessionRepository abstracts how play sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Get(ctx context.Context, id string) (PlaySession, error)
	Put(ctx context.Context, session PlaySession) error
	Delete(ctx context.Context, id string) error
}

// PlayState is the rendered session returned to players.
type PlayState struct {
	SessionID string `json:"sessionId"`
	engine.View
}

// PlayService hosts quiz sessions. Every transition on one session id is serialized.
type PlayService struct {
	quizzes  QuizRepository
	sessions SessionRepository
	now      func() time.Time
	log      logrus.FieldLogger

	locks keyedMutex

	mu       sync.Mutex
	watchers map[string]map[chan PlayState]struct{}
}

func NewPlayService(quizzes QuizRepository, sessions SessionRepository, log logrus.FieldLogger) *PlayService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PlayService{
		quizzes:  quizzes,
		sessions: sessions,
		now:      time.Now,
		log:      log,
		locks:    keyedMutex{locks: make(map[string]*lockEntry)},
		watchers: make(map[string]map[chan PlayState]struct{}),
	}
}

// Start loads the quiz once and opens a session on its first question.
func (s *PlayService) Start(ctx context.Context, slug string) (PlayState, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, slug)
	if err != nil {
		return PlayState{}, err
	}
	session, err := engine.New(quiz)
	if err != nil {
		return PlayState{}, err
	}

	ps := PlaySession{
		ID:        uuid.NewString(),
		Quiz:      quiz,
		State:     session.Snapshot(),
		UpdatedAt: s.now(),
	}
	if err := s.sessions.Put(ctx, ps); err != nil {
		return PlayState{}, err
	}
	s.log.WithFields(logrus.Fields{"session": ps.ID, "slug": slug}).Debug("session started")
	return PlayState{SessionID: ps.ID, View: session.View()}, nil
}

// State returns the current view of a session.
func (s *PlayService) State(ctx context.Context, id string) (PlayState, error) {
	ps, session, err := s.load(ctx, id)
	if err != nil {
		return PlayState{}, err
	}
	return PlayState{SessionID: ps.ID, View: session.View()}, nil
}

// Select locks in an answer for the current question. A second selection is ignored.
func (s *PlayService) Select(ctx context.Context, id string, option int) (PlayState, error) {
	return s.mutate(ctx, id, func(session *engine.Session) (bool, error) {
		outcome, err := session.Select(option)
		if err != nil {
			return false, err
		}
		if outcome == engine.Ignored {
			s.log.WithField("session", id).Debug("selection ignored, answer already revealed")
		}
		return outcome == engine.Accepted, nil
	})
}

// Advance moves past a revealed answer, finishing the session on the last question.
func (s *PlayService) Advance(ctx context.Context, id string) (PlayState, error) {
	return s.mutate(ctx, id, func(session *engine.Session) (bool, error) {
		if err := session.Advance(); err != nil {
			return false, err
		}
		return true, nil
	})
}

// Restart resets the session to its first question with the same quiz.
func (s *PlayService) Restart(ctx context.Context, id string) (PlayState, error) {
	return s.mutate(ctx, id, func(session *engine.Session) (bool, error) {
		session.Restart()
		return true, nil
	})
}

// End discards the session and closes its watchers.
func (s *PlayService) End(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for ch := range s.watchers[id] {
		close(ch)
	}
	delete(s.watchers, id)
	s.mu.Unlock()
	return nil
}

// Watch returns a channel that receives the session state after every transition,
// starting with the current one. The caller must invoke the returned cancel function to avoid leaks.
func (s *PlayService) Watch(ctx context.Context, id string) (<-chan PlayState, func(), error) {
	// held until registered so no transition or End slips in between
	unlock := s.locks.lock(id)
	defer unlock()

	initial, err := s.State(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan PlayState, 8)
	ch <- initial

	s.mu.Lock()
	if s.watchers[id] == nil {
		s.watchers[id] = make(map[chan PlayState]struct{})
	}
	s.watchers[id][ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs, ok := s.watchers[id]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(s.watchers, id)
		}
	}
	return ch, cancel, nil
}

func (s *PlayService) load(ctx context.Context, id string) (PlaySession, *engine.Session, error) {
	ps, err := s.sessions.Get(ctx, id)
	if err != nil {
		return PlaySession{}, nil, err
	}
	session, err := engine.Restore(ps.Quiz, ps.State)
	if err != nil {
		return PlaySession{}, nil, err
	}
	return ps, session, nil
}

// mutate runs fn under the session lock and persists the result when fn reports a change.
func (s *PlayService) mutate(ctx context.Context, id string, fn func(*engine.Session) (bool, error)) (PlayState, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	ps, session, err := s.load(ctx, id)
	if err != nil {
		return PlayState{}, err
	}
	changed, err := fn(session)
	if err != nil {
		return PlayState{}, err
	}

	state := PlayState{SessionID: ps.ID, View: session.View()}
	if !changed {
		return state, nil
	}

	ps.State = session.Snapshot()
	ps.UpdatedAt = s.now()
	if err := s.sessions.Put(ctx, ps); err != nil {
		return PlayState{}, err
	}
	s.broadcast(id, state)
	return state, nil
}

func (s *PlayService) broadcast(id string, state PlayState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers[id] {
		select {
		case ch <- state:
		default:
			// drop the stale update so a slow watcher never blocks play
			select {
			case <-ch:
			default:
			}
			ch <- state
		}
	}
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
