package repositories

import (
	"context"

	"expenzy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepositoryInterface defines the contract for user (account) storage
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerRepositoryInterface is the record store for a user's transaction log
// and the summaries derived from it
type LedgerRepositoryInterface interface {
	// Append adds tx to the end of the user's log. ErrUserNotFound if absent.
	Append(ctx context.Context, userID uuid.UUID, tx *models.Transaction) error
	// ReadLog returns the whole log in insertion order.
	ReadLog(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error
	// WriteSummary upserts by user, kind and period start.
	WriteSummary(ctx context.Context, userID uuid.UUID, summary *models.Summary) error
	// ListSummaries returns summaries ordered by period start. An empty kind lists both.
	ListSummaries(ctx context.Context, userID uuid.UUID, kind string) ([]models.Summary, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Users  UserRepositoryInterface
	Ledger LedgerRepositoryInterface
}

// NewSQLStore returns the gorm-backed repositories sharing db
func NewSQLStore(db *gorm.DB) *Store {
	return &Store{
		Users:  NewUserRepository(db),
		Ledger: NewLedgerRepository(db),
	}
}
