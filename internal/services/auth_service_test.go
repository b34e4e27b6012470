package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"expenzy/internal/dto"
	"expenzy/internal/models"
	"expenzy/internal/repositories"
	"expenzy/internal/repositories/repository_mocks"
	"expenzy/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl            *gomock.Controller
	userRepo        *repository_mocks.MockUserRepositoryInterface
	passwordService *service_mocks.MockPasswordServiceInterface
	metrics         *service_mocks.MockMetricsRecorderInterface
	authService     AuthServiceInterface
	ctx             context.Context
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.authService = NewAuthService(s.userRepo, s.passwordService, s.metrics, slog.Default())
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) expectAuthEvent(eventType string) {
	s.metrics.EXPECT().
		IncrementCounter("authentication_event", map[string]string{"event_type": eventType}).
		Times(1)
}

func (s *AuthServiceTestSuite) TestSignup_Success() {
	req := &dto.SignupRequest{
		Email:    " New@Example.com ",
		Password: "password123",
		Income:   decimal.NewFromInt(50000),
	}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "new@example.com").Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, user *models.User) error {
		user.ID = uuid.New()
		return nil
	})
	s.expectAuthEvent("signup")

	user, err := s.authService.Signup(s.ctx, req)

	s.Require().NoError(err)
	s.Equal("new@example.com", user.Email)
	s.Equal("hashed_password", user.PasswordHash)
	s.True(user.Income.Equal(decimal.NewFromInt(50000)))
}

func (s *AuthServiceTestSuite) TestSignup_UserAlreadyExists() {
	req := &dto.SignupRequest{Email: "existing@example.com", Password: "password123"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, req.Email).Return(&models.User{Email: req.Email}, nil)
	s.expectAuthEvent("signup_conflict")

	user, err := s.authService.Signup(s.ctx, req)

	s.Equal(ErrUserAlreadyExists, err)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestSignup_RaceOnCreateIsConflict() {
	req := &dto.SignupRequest{Email: "racer@example.com", Password: "password123"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, req.Email).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(repositories.ErrUserAlreadyExists)
	s.expectAuthEvent("signup_conflict")

	_, err := s.authService.Signup(s.ctx, req)

	s.Equal(ErrUserAlreadyExists, err)
}

func (s *AuthServiceTestSuite) TestSignup_WeakPassword() {
	req := &dto.SignupRequest{Email: "weak@example.com", Password: "123"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, req.Email).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(req.Password).Return("", ErrPasswordTooShort)

	_, err := s.authService.Signup(s.ctx, req)

	s.ErrorIs(err, ErrPasswordTooShort)
}

func (s *AuthServiceTestSuite) TestSignup_LookupFailure() {
	req := &dto.SignupRequest{Email: "down@example.com", Password: "password123"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, req.Email).Return(nil, errors.New("connection refused"))

	_, err := s.authService.Signup(s.ctx, req)

	s.Error(err)
	s.Contains(err.Error(), "failed to check existing user")
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: "hash"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "user@example.com").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("password123", "hash").Return(true)
	s.expectAuthEvent("login")

	got, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: "user@example.com", Password: "password123"})

	s.NoError(err)
	s.Equal(user, got)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.userRepo.EXPECT().GetByEmail(s.ctx, "ghost@example.com").Return(nil, repositories.ErrUserNotFound)
	s.expectAuthEvent("login_failed")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "password123"})

	s.Equal(ErrInvalidCredentials, err)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	user := &models.User{ID: uuid.New(), Email: "user@example.com", PasswordHash: "hash"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "user@example.com").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("wrong", "hash").Return(false)
	s.expectAuthEvent("login_failed")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: "user@example.com", Password: "wrong"})

	s.Equal(ErrInvalidCredentials, err)
}

func (s *AuthServiceTestSuite) TestGetUserByEmail() {
	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	s.userRepo.EXPECT().GetByEmail(s.ctx, "user@example.com").Return(user, nil)
	s.userRepo.EXPECT().GetByEmail(s.ctx, "ghost@example.com").Return(nil, repositories.ErrUserNotFound)

	got, err := s.authService.GetUserByEmail(s.ctx, "user@example.com")
	s.NoError(err)
	s.Equal(user.ID, got.ID)

	_, err = s.authService.GetUserByEmail(s.ctx, "ghost@example.com")
	s.Equal(ErrUserNotFound, err)
}
