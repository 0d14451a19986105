package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/storage"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/validator"
)

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *mockBackend) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBackend) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	args := m.Called(ctx, update)
	return args.Get(0).(domain.User), args.Error(1)
}

// --- Test Helpers ---

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func validToken(t *testing.T) string {
	return signToken(t, &Claims{
		ID:    "u1",
		Name:  "Layla",
		Email: "layla@example.com",
		Role:  "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
	})
}

func newTestTokens(store storage.Store) *Tokens {
	tk := NewTokens(store, newTestLogger())
	tk.now = func() time.Time { return testNow }
	return tk
}

// --- Tests ---

func TestTokens_Decode(t *testing.T) {
	tk := newTestTokens(storage.NewMemory())

	t.Run("exp", func(t *testing.T) {
		claims, err := tk.Decode(validToken(t))
		require.NoError(t, err)
		assert.Equal(t, domain.User{ID: "u1", Name: "Layla", Email: "layla@example.com", Role: "user"}, claims.User())
	})

	t.Run("nested default exp", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{
			"userId":  "u2",
			"default": map[string]any{"exp": testNow.Add(time.Minute).Unix()},
		})
		claims, err := tk.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, "u2", claims.User().ID)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testNow.Add(-time.Second))})
		_, err := tk.Decode(token)
		assert.ErrorIs(t, err, errExpired)
	})

	t.Run("no expiry", func(t *testing.T) {
		token := signToken(t, jwt.MapClaims{"id": "u3"})
		_, err := tk.Decode(token)
		assert.ErrorIs(t, err, errNoExpiry)
	})

	t.Run("not a jwt", func(t *testing.T) {
		_, err := tk.Decode("not-a-token")
		assert.Error(t, err)
	})
}

func TestTokens_LoadPurgesExpired(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	expired := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testNow.Add(-time.Hour))})
	require.NoError(t, store.Set(ctx, storage.KeyToken, expired))

	tk := newTestTokens(store)
	_, _, err := tk.Load(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Empty(t, tk.Token(ctx))

	_, ok, err := storage.Lookup(ctx, store, storage.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	backend := new(mockBackend)
	m := NewManager(backend, newTestTokens(store), newTestLogger())

	creds := domain.Credentials{Email: "layla@example.com", Password: "secret1"}
	token := validToken(t)
	backend.On("Login", ctx, creds).Return(token, nil)

	u, err := m.Login(ctx, creds)
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	stored, err := store.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, token, stored)
	assert.True(t, m.Authenticated(ctx))
	backend.AssertExpectations(t)
}

func TestManager_LoginRejectsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	backend := new(mockBackend)
	m := NewManager(backend, newTestTokens(store), newTestLogger())

	creds := domain.Credentials{Email: "layla@example.com", Password: "secret1"}
	expired := signToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testNow.Add(-time.Hour))})
	backend.On("Login", ctx, creds).Return(expired, nil)

	_, err := m.Login(ctx, creds)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, m.Authenticated(ctx))
}

func TestManager_LoginValidatesCredentials(t *testing.T) {
	backend := new(mockBackend)
	m := NewManager(backend, newTestTokens(storage.NewMemory()), newTestLogger())

	_, err := m.Login(context.Background(), domain.Credentials{Email: "nope", Password: "1"})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "email")
	assert.Contains(t, valErr.Fields(), "password")
	backend.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestManager_LogoutAlwaysClearsToken(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.KeyToken, validToken(t)))

	backend := new(mockBackend)
	backend.On("Logout", ctx).Return(apperrors.Transport(errors.New("connection refused")))
	m := NewManager(backend, newTestTokens(store), newTestLogger())

	require.NoError(t, m.Logout(ctx))
	assert.False(t, m.Authenticated(ctx))

	_, err := m.Current(ctx)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestManager_UpdateProfileMergesUser(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.Set(ctx, storage.KeyToken, validToken(t)))

	backend := new(mockBackend)
	update := domain.ProfileUpdate{Phone: "+966500000000"}
	backend.On("UpdateProfile", ctx, update).Return(domain.User{ID: "u1", Phone: "+966500000000"}, nil)
	m := NewManager(backend, newTestTokens(store), newTestLogger())

	u, err := m.UpdateProfile(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, domain.User{
		ID: "u1", Name: "Layla", Email: "layla@example.com", Phone: "+966500000000", Role: "user",
	}, u)

	current, err := m.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, u, current)
}

func TestManager_UpdateProfileRequiresSession(t *testing.T) {
	backend := new(mockBackend)
	m := NewManager(backend, newTestTokens(storage.NewMemory()), newTestLogger())

	_, err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "X"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	backend.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
}
