package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"brainscore-quiz-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store by slug.
type QuizLoader interface {
	GetBySlug(ctx context.Context, slug string) (domain.Quiz, error)
}

// QuizRepository caches quizzes by slug with TTL to avoid repeated store hits.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, slug string) (domain.Quiz, error) {
	if quiz, ok := r.lookup(slug); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(slug, func() (interface{}, error) {
		if quiz, ok := r.lookup(slug); ok {
			return quiz, nil
		}

		quiz, err := r.loader.GetBySlug(ctx, slug)
		if err != nil {
			return domain.Quiz{}, err
		}

		r.mu.Lock()
		r.cache[slug] = cachedQuiz{
			quiz:      quiz,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return copyQuiz(result.(domain.Quiz)), nil
}

// Invalidate drops the cached quiz for slug.
func (r *QuizRepository) Invalidate(_ context.Context, slug string) {
	r.mu.Lock()
	delete(r.cache, slug)
	r.mu.Unlock()
	r.sf.Forget(slug)
}

func (r *QuizRepository) lookup(slug string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[slug]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return copyQuiz(entry.quiz), true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
