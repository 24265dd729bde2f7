package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/models"
	"github.com/teleotp/teleotp/pkg/crypto"
	"github.com/teleotp/teleotp/pkg/middleware"
)

// AuthService issues JWTs for buyers and operators. Accounts whose email is
// on the configured admin list get the admin role.
type AuthService struct {
	userRepo    UserRepository
	auth        *middleware.AuthMiddleware
	adminEmails map[string]bool
	logger      *logrus.Logger
}

func NewAuthService(userRepo UserRepository, auth *middleware.AuthMiddleware, adminEmails []string, logger *logrus.Logger) *AuthService {
	admins := make(map[string]bool, len(adminEmails))
	for _, email := range adminEmails {
		admins[strings.ToLower(email)] = true
	}

	return &AuthService{
		userRepo:    userRepo,
		auth:        auth,
		adminEmails: admins,
		logger:      logger,
	}
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrEmailTaken
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		s.logger.Errorf("Failed to hash password: %v", err)
		return nil, err
	}

	role := models.RoleUser
	if s.adminEmails[email] {
		role = models.RoleAdmin
	}

	user := &models.User{
		Email:    email,
		Password: hashed,
		Role:     role,
		IsActive: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.tokenFor(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !crypto.CheckPassword(password, user.Password) {
		return nil, models.ErrInvalidCredentials
	}

	return s.tokenFor(user)
}

func (s *AuthService) tokenFor(user *models.User) (*TokenResponse, error) {
	token, err := s.auth.GenerateToken(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		s.logger.Errorf("Failed to generate token: %v", err)
		return nil, err
	}

	user.Password = ""

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   86400,
		User:        user,
	}, nil
}
