package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/model"
	"github.com/deviswethae/AI-Text-Summarizer-Translator/internal/store"
)

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6
	maxUsernameLength = 64
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong
// password. It matches model.ErrUnauthorized.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", model.ErrUnauthorized)

// Service registers users, checks their credentials and issues tokens.
type Service struct {
	users      store.UserStore
	secret     []byte
	ttl        time.Duration
	bcryptCost int
	logger     *zap.Logger
}

// NewService creates an auth service over users. Tokens are signed with
// secret and expire after ttl.
func NewService(users store.UserStore, secret string, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:      users,
		secret:     []byte(secret),
		ttl:        ttl,
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.Named("auth"),
	}
}

// Register validates the fields and stores a new user with a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = model.NormalizeEmail(email)

	switch {
	case username == "":
		return nil, &model.InvalidInputError{Reason: "username is required"}
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return nil, &model.InvalidInputError{Reason: fmt.Sprintf("username exceeds %d characters", maxUsernameLength)}
	case !validEmail(email):
		return nil, &model.InvalidInputError{Reason: "email is invalid"}
	case len(password) < MinPasswordLength:
		return nil, &model.InvalidInputError{Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, &model.InvalidInputError{Reason: "password is too long"}
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := model.NewUser(uuid.NewString(), username, email, string(hash))
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return &u, nil
}

// Login checks the credentials and returns a signed token with the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("password mismatch", zap.String("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(u.ID, u.Username, s.secret, s.ttl)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

// Verify parses a token and returns the owner id it carries.
func (s *Service) Verify(token string) (string, error) {
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
