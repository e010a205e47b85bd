package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"brainscore-quiz-service/internal/app"
	"brainscore-quiz-service/internal/domain"
)

// SessionStore keeps play sessions in Redis so a player can resume them from
// any instance until they sit idle for ttl.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, id string) (app.PlaySession, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return app.PlaySession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return app.PlaySession{}, fmt.Errorf("load session: %w", err)
	}
	var session app.PlaySession
	if err := json.Unmarshal(raw, &session); err != nil {
		return app.PlaySession{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Put(ctx context.Context, session app.PlaySession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "play:session:" + id
}
