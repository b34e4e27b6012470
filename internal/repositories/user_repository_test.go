package repositories

import (
	"context"
	"strings"
	"testing"

	"expenzy/internal/database"
	"expenzy/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

type UserRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo UserRepositoryInterface
	ctx  context.Context
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
	s.ctx = context.Background()
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *UserRepositorySuite) newUser() *models.User {
	return &models.User{
		Email:        strings.ToLower(gofakeit.Email()),
		PasswordHash: "hashed_password",
		Income:       decimal.NewFromInt(int64(gofakeit.Number(1000, 90000))),
	}
}

func (s *UserRepositorySuite) TestCreate() {
	user := s.newUser()

	err := s.repo.Create(s.ctx, user)

	s.NoError(err)
	s.NotEqual(uuid.Nil, user.ID)
	s.NotZero(user.CreatedAt)
}

func (s *UserRepositorySuite) TestCreate_DuplicateEmail() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	duplicate := &models.User{Email: strings.ToUpper(user.Email), PasswordHash: "other"}
	err := s.repo.Create(s.ctx, duplicate)

	s.Equal(ErrUserAlreadyExists, err)
}

func (s *UserRepositorySuite) TestGetByEmail() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	found, err := s.repo.GetByEmail(s.ctx, "  "+strings.ToUpper(user.Email))
	s.NoError(err)
	s.Equal(user.ID, found.ID)
	s.True(user.Income.Equal(found.Income))

	_, err = s.repo.GetByEmail(s.ctx, "nonexistent@example.com")
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestGetByID() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	found, err := s.repo.GetByID(s.ctx, user.ID)
	s.NoError(err)
	s.Equal(user.Email, found.Email)

	_, err = s.repo.GetByID(s.ctx, uuid.New())
	s.Equal(ErrUserNotFound, err)
}

func (s *UserRepositorySuite) TestListIDs() {
	first := s.newUser()
	second := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, first))
	s.Require().NoError(s.repo.Create(s.ctx, second))

	ids, err := s.repo.ListIDs(s.ctx)

	s.NoError(err)
	s.ElementsMatch([]uuid.UUID{first.ID, second.ID}, ids)
}

func (s *UserRepositorySuite) TestDelete_CascadesToLog() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	ledgerRepo := NewLedgerRepository(s.db.DB)
	s.Require().NoError(ledgerRepo.Append(s.ctx, user.ID, &models.Transaction{
		Amount:   decimal.NewFromInt(10),
		Category: "Food",
	}))

	s.NoError(s.repo.Delete(s.ctx, user.ID))

	var remaining int64
	s.db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&remaining)
	s.Zero(remaining)

	s.Equal(ErrUserNotFound, s.repo.Delete(s.ctx, user.ID))
}
