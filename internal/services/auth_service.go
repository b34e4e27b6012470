package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"expenzy/internal/dto"
	"expenzy/internal/models"
	"expenzy/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles signup and login. There are no sessions: a successful
// login only confirms the credentials.
type AuthService struct {
	userRepo        repositories.UserRepositoryInterface
	passwordService PasswordServiceInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	passwordService PasswordServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AuthServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:        userRepo,
		passwordService: passwordService,
		metrics:         metrics,
		logger:          logger,
	}
}

// Signup creates a new account with a hashed password
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupRequest) (*models.User, error) {
	email := models.NormalizeEmail(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.recordAuthEvent("signup_conflict")
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashedPassword,
		Income:       req.Income,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			s.recordAuthEvent("signup_conflict")
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.recordAuthEvent("signup")
	s.logger.Info("user signed up", "user_id", user.ID)

	return user, nil
}

// Login checks the email and password and returns the matching user
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.recordAuthEvent("login_failed")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		s.recordAuthEvent("login_failed")
		s.logger.Warn("login rejected", "user_id", user.ID, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	s.recordAuthEvent("login")
	return user, nil
}

// GetUserByEmail resolves an email address to its account
func (s *AuthService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return lookupUser(ctx, s.userRepo, email)
}

func (s *AuthService) recordAuthEvent(eventType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": eventType})
}

func lookupUser(ctx context.Context, users repositories.UserRepositoryInterface, email string) (*models.User, error) {
	user, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
