package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"brainscore-quiz-service/internal/domain"
)

func newTestService(t *testing.T, now func() time.Time) *Service {
	t.Helper()
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	return NewService(Options{
		AdminEmail:   "admin@example.com",
		PasswordHash: hash,
		Secret:       "test-secret",
		TTL:          time.Hour,
		Now:          now,
	})
}

func TestLoginOnlyAdmin(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	_, err := s.Login(ctx, "someone@example.com", "s3cret")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = s.Login(ctx, "admin@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)

	token, err := s.Login(ctx, "Admin@Example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)

	user, err := s.Authenticate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	token, err := s.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.True(t, s.Current().Authorized)

	require.NoError(t, s.Logout(ctx, token.AccessToken))
	assert.False(t, s.Current().Authorized)
	assert.Nil(t, s.Current().User)

	_, err = s.Authenticate(token.AccessToken)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestEmptySecretDisablesService(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	s := NewService(Options{AdminEmail: "admin@example.com", PasswordHash: hash})
	require.False(t, s.Enabled())

	_, err = s.Login(context.Background(), "admin@example.com", "s3cret")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "admin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "forged",
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(""))
	require.NoError(t, err)
	_, err = s.Authenticate(forged)
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestExpiredToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	s := newTestService(t, clock)

	token, err := s.Login(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = s.Authenticate(token.AccessToken)
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSubscribeSeesStateChanges(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	var seen []State
	cancel := s.Subscribe(func(st State) { seen = append(seen, st) })

	token, err := s.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx, token.AccessToken))

	cancel()
	_, err = s.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)

	require.Len(t, seen, 3)
	assert.False(t, seen[0].Authorized)
	assert.True(t, seen[1].Authorized)
	assert.Equal(t, "admin@example.com", seen[1].User.Email)
	assert.False(t, seen[2].Authorized)
}

func TestRequireAdmin(t *testing.T) {
	s := newTestService(t, nil)
	token, err := s.Login(context.Background(), "admin@example.com", "s3cret")
	require.NoError(t, err)

	handler := RequireAdmin(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(user.Email))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", rec.Body.String())
}
