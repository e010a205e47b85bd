// Package auth gates the authoring surface behind a single admin identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"brainscore-quiz-service/internal/domain"
)

const issuer = "brainscore"

// User is the authenticated principal.
type User struct {
	Email string `json:"email"`
}

// State is what subscribers observe whenever the admin logs in or out.
type State struct {
	User       *User `json:"user,omitempty"`
	Authorized bool  `json:"isAdmin"`
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Options struct {
	AdminEmail   string
	PasswordHash string // bcrypt
	Secret       string
	TTL          time.Duration
	Now          func() time.Time
}

// Service issues and checks admin tokens and publishes auth state changes.
type Service struct {
	adminEmail   string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time

	mu        sync.RWMutex
	current   *User
	revoked   map[string]time.Time
	listeners map[int]func(State)
	nextID    int
}

func NewService(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TTL <= 0 {
		opts.TTL = 8 * time.Hour
	}
	return &Service{
		adminEmail:   strings.TrimSpace(opts.AdminEmail),
		passwordHash: []byte(opts.PasswordHash),
		secret:       []byte(opts.Secret),
		ttl:          opts.TTL,
		now:          opts.Now,
		revoked:      make(map[string]time.Time),
		listeners:    make(map[int]func(State)),
	}
}

// HashPassword produces the bcrypt hash expected in admin.passwordHash.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the admin identity before the password; any other email is refused outright.
func (s *Service) Login(_ context.Context, email, password string) (Token, error) {
	if !s.Enabled() || !strings.EqualFold(strings.TrimSpace(email), s.adminEmail) {
		return Token{}, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return Token{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		Email: s.adminEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   s.adminEmail,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	s.mu.Lock()
	s.current = &User{Email: s.adminEmail}
	s.mu.Unlock()
	s.notify()

	return Token{AccessToken: signed, ExpiresAt: expires}, nil
}

// Logout revokes the token and clears the current user.
func (s *Service) Logout(_ context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	now := s.now()
	for id, until := range s.revoked {
		if until.Before(now) {
			delete(s.revoked, id)
		}
	}
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	s.current = nil
	s.mu.Unlock()
	s.notify()
	return nil
}

// Authenticate resolves a bearer token to the admin user.
func (s *Service) Authenticate(token string) (User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return User{}, err
	}
	s.mu.RLock()
	_, revoked := s.revoked[claims.ID]
	s.mu.RUnlock()
	if revoked {
		return User{}, domain.ErrInvalidCredentials
	}
	if !strings.EqualFold(claims.Email, s.adminEmail) {
		return User{}, domain.ErrUnauthorized
	}
	return User{Email: claims.Email}, nil
}

// Current returns the auth state as last changed by Login or Logout.
func (s *Service) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Subscribe registers fn for auth state changes and immediately delivers the
// current state. The returned cancel function unregisters it.
func (s *Service) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	state := s.stateLocked()
	s.mu.Unlock()

	fn(state)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Enabled reports whether an admin identity and signing secret are configured.
// A disabled service refuses every login and token.
func (s *Service) Enabled() bool {
	return s.adminEmail != "" && len(s.passwordHash) > 0 && len(s.secret) > 0
}

func (s *Service) parse(token string) (*Claims, error) {
	if !s.Enabled() {
		return nil, domain.ErrUnauthorized
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

func (s *Service) stateLocked() State {
	if s.current == nil {
		return State{}
	}
	u := *s.current
	return State{User: &u, Authorized: strings.EqualFold(u.Email, s.adminEmail)}
}

func (s *Service) notify() {
	s.mu.RLock()
	state := s.stateLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}
