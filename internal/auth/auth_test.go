package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/store"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := store.Open(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	svc := NewService(s, string(testSecret), time.Hour, nil)
	svc.bcryptCost = bcrypt.MinCost
	return svc
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-1", "alice", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseTokenRejects(t *testing.T) {
	expired, err := GenerateToken("user-1", "alice", testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := GenerateToken("user-1", "alice", []byte("other"), time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(other, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "user-1"}).SignedString(testSecret)
	require.NoError(t, err)
	_, err = ParseToken(noExpiry, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noUser, err := GenerateToken("", "alice", testSecret, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(noUser, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("garbage", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	u, err := svc.Register(ctx, " alice ", "Alice@Example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.PasswordHash)

	token, got, err := svc.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	owner, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, owner)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice2", "ALICE@example.com", "secret123")
	assert.ErrorIs(t, err, model.ErrDuplicate)

	_, err = svc.Register(ctx, "alice", "other@example.com", "secret123")
	assert.ErrorIs(t, err, model.ErrDuplicate)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name, username, email, password string
	}{
		{"no username", " ", "a@example.com", "secret123"},
		{"long username", strings.Repeat("u", maxUsernameLength+1), "a@example.com", "secret123"},
		{"bad email", "alice", "not-an-email", "secret123"},
		{"short password", "alice", "a@example.com", "123"},
		{"long password", "alice", "a@example.com", strings.Repeat("p", 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	m := NewMiddleware(&Service{secret: testSecret}, nil)
	var seen string
	h := m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = OwnerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	token, err := GenerateToken("user-7", "bob", testSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
		owner  string
	}{
		{"missing", "", http.StatusUnauthorized, ""},
		{"bearer", "Bearer " + token, http.StatusNoContent, "user-7"},
		{"lowercase bearer", "bearer " + token, http.StatusNoContent, "user-7"},
		{"bare token", token, http.StatusNoContent, "user-7"},
		{"invalid", "Bearer nope", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/summaries", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.owner, seen)
			if tt.want >= 400 {
				assert.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestOwnerFromContext(t *testing.T) {
	_, ok := OwnerFromContext(context.Background())
	assert.False(t, ok)

	_, ok = OwnerFromContext(WithOwner(context.Background(), ""))
	assert.False(t, ok)

	id, ok := OwnerFromContext(WithOwner(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}
