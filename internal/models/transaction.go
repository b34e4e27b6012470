package models

import (
	"errors"
	"strings"
	"time"

	"expenzy/internal/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount    = errors.New("transaction amount must be positive")
	ErrCategoryRequired = errors.New("transaction category is required")
	ErrCategoryTooLong  = errors.New("category too long")
)

const maxCategoryLength = 50

// Transaction is one row of a user's daily log.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_user_date,priority:1" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Category    string          `gorm:"type:varchar(50);not null" json:"category"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	IsIncome    bool            `gorm:"not null;default:false" json:"is_income"`
	OccurredAt  time.Time       `gorm:"not null;index:idx_transactions_user_date,priority:2" json:"date"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	t.Amount = ledger.RoundAmount(t.Amount)

	now := time.Now().UTC()
	if t.OccurredAt.IsZero() {
		t.OccurredAt = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if strings.TrimSpace(t.Category) == "" {
		return ErrCategoryRequired
	}

	if len(t.Category) > maxCategoryLength {
		return ErrCategoryTooLong
	}

	return nil
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// ToLedger converts the row to the aggregation record.
func (t *Transaction) ToLedger() ledger.Transaction {
	return ledger.Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.OccurredAt.UTC(),
		IsIncome:    t.IsIncome,
	}
}

// TransactionFromLedger builds a row owned by userID from an aggregation record.
func TransactionFromLedger(userID uuid.UUID, tx ledger.Transaction) *Transaction {
	return &Transaction{
		ID:          tx.ID,
		UserID:      userID,
		Amount:      tx.Amount,
		Category:    strings.TrimSpace(tx.Category),
		Description: tx.Description,
		IsIncome:    tx.IsIncome,
		OccurredAt:  tx.Date.UTC(),
	}
}
