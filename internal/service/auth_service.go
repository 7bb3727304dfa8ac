package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"answerhub/internal/auth"
	"answerhub/internal/models"
	"answerhub/internal/repository"
)

// AuthService handles registration and login
type AuthService struct {
	users  *repository.UserRepository
	tokens *auth.Service
}

// NewAuthService creates a new auth service
func NewAuthService(users *repository.UserRepository, tokens *auth.Service) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates a new user account
func (s *AuthService) Register(email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing user: %w", err)
	}
	if existing != nil {
		return nil, validationError("email", "email is already registered")
	}

	hash, err := s.tokens.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a JWT token
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, "", validationError("credentials", "invalid email or password")
	}

	if err := s.tokens.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", validationError("credentials", "invalid email or password")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByID retrieves a user account
func (s *AuthService) GetUserByID(id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
