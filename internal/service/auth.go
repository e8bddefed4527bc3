package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"kollektivet/internal/models"
	"kollektivet/internal/oauth"
	"kollektivet/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	// LoginWithPassword returns a signed session token. A missing user and a
	// wrong password are both reported as ErrInvalidCredentials.
	LoginWithPassword(ctx context.Context, email, password string) (string, time.Time, error)
	// GoogleAuthURL starts the OAuth handshake.
	GoogleAuthURL(state string) (string, error)
	// LoginWithGoogle completes the handshake: exchanges the code, fetches
	// the profile and upserts the principal by email. The first principal
	// ever created becomes ADMIN.
	LoginWithGoogle(ctx context.Context, code string) (string, time.Time, error)
}

type authService struct {
	users    repository.UserRepository
	google   *oauth.GoogleClient
	secret   []byte
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAuthService(users repository.UserRepository, google *oauth.GoogleClient, secret []byte, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	return &authService{
		users:    users,
		google:   google,
		secret:   secret,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: sql.NullString{String: string(passwordHash), Valid: true},
	}
	if name != "" {
		user.Name = sql.NullString{String: name, Valid: true}
	}

	created, err := s.users.CreateOrGet(ctx, user)
	if err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if !created {
		return nil, ErrUserAlreadyExists
	}
	return user, nil
}

func (s *authService) LoginWithPassword(ctx context.Context, email, password string) (string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same outcome as a wrong password: no signal about which emails exist.
			return "", time.Time{}, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to retrieve user: %w", err)
	}

	// OAuth-only accounts have no stored credential.
	if !user.PasswordHash.Valid {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash.String), []byte(password)) != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	s.logger.Info("User logged in", zap.String("email", user.Email))
	return s.issueToken(user)
}

func (s *authService) GoogleAuthURL(state string) (string, error) {
	if !s.google.Configured() {
		return "", oauth.ErrNotConfigured
	}
	return s.google.AuthCodeURL(state), nil
}

func (s *authService) LoginWithGoogle(ctx context.Context, code string) (string, time.Time, error) {
	accessToken, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("Google code exchange failed", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("google code exchange failed: %w", err)
	}

	info, err := s.google.FetchUserInfo(ctx, accessToken)
	if err != nil {
		s.logger.Error("Failed to fetch Google userinfo", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to fetch google userinfo: %w", err)
	}

	user := &models.User{
		ID:    uuid.NewString(),
		Email: info.Email,
	}
	if info.Name != "" {
		user.Name = sql.NullString{String: info.Name, Valid: true}
	}
	if info.Picture != "" {
		user.Image = sql.NullString{String: info.Picture, Valid: true}
	}

	// Idempotent upsert: repeat sign-ins reuse the stored row unchanged, and
	// CreateOrGet fills user with the persisted record either way.
	if _, err := s.users.CreateOrGet(ctx, user); err != nil {
		s.logger.Error("Failed to upsert user", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	s.logger.Info("User logged in via Google", zap.String("email", user.Email))
	return s.issueToken(user)
}

// issueToken signs a session token whose claims come from the persisted user
// row, so the embedded role reflects the database at the moment of login.
func (s *authService) issueToken(user *models.User) (string, time.Time, error) {
	expirationTime := time.Now().Add(s.tokenTTL)
	claims := &models.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
		Name:   user.Name.String,
		Image:  user.Image.String,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return "", time.Time{}, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, expirationTime, nil
}
