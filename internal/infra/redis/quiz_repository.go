package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"brainscore-quiz-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store by slug.
type QuizLoader interface {
	GetBySlug(ctx context.Context, slug string) (domain.Quiz, error)
}

// QuizRepository caches whole quiz documents in Redis and falls back to a loader on cache miss.
// Quizzes are stored as JSON under quiz:{slug}.
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	log    logrus.FieldLogger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration, log logrus.FieldLogger) *QuizRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		log:    log,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, slug string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, slug); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(slug, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := r.cached(ctx, slug); ok {
			return quiz, nil
		}

		quiz, err := r.loader.GetBySlug(ctx, slug)
		if err != nil {
			return domain.Quiz{}, err
		}

		raw, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, err
		}
		if err := r.client.Set(ctx, r.key(slug), raw, r.ttlWithJitter()).Err(); err != nil {
			r.log.WithError(err).WithField("slug", slug).Warn("quiz cache write failed")
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached quiz for slug.
func (r *QuizRepository) Invalidate(ctx context.Context, slug string) {
	if err := r.client.Del(ctx, r.key(slug)).Err(); err != nil {
		r.log.WithError(err).WithField("slug", slug).Warn("quiz cache invalidate failed")
	}
	r.sf.Forget(slug)
}

func (r *QuizRepository) cached(ctx context.Context, slug string) (domain.Quiz, bool) {
	raw, err := r.client.Get(ctx, r.key(slug)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.WithError(err).WithField("slug", slug).Warn("quiz cache read failed")
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (r *QuizRepository) key(slug string) string {
	return "quiz:" + slug
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
