package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expenzy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidSummary      = errors.New("invalid summary")
)

// LedgerRepository stores transaction logs and summaries in SQL tables
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new gorm-backed ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepositoryInterface {
	return &LedgerRepository{db: db}
}

// Append inserts tx for userID
func (r *LedgerRepository) Append(ctx context.Context, userID uuid.UUID, tx *models.Transaction) error {
	if tx == nil {
		return errors.New("transaction cannot be nil")
	}

	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := requireUser(db, userID); err != nil {
			return err
		}

		tx.UserID = userID
		if err := db.Create(tx).Error; err != nil {
			return fmt.Errorf("failed to append transaction: %w", err)
		}
		return nil
	})
}

// ReadLog returns the user's transactions in insertion order
func (r *LedgerRepository) ReadLog(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	db := r.db.WithContext(ctx)
	if err := requireUser(db, userID); err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	if err := db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	return transactions, nil
}

// DeleteTransaction removes one transaction owned by userID
func (r *LedgerRepository) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// WriteSummary replaces the summary stored for the same kind and period
// start, or inserts it when none exists
func (r *LedgerRepository) WriteSummary(ctx context.Context, userID uuid.UUID, summary *models.Summary) error {
	if summary == nil || !models.IsValidSummaryKind(summary.Kind) {
		return ErrInvalidSummary
	}

	summary.UserID = userID
	summary.PeriodStart = summary.PeriodStart.UTC()
	summary.UpdatedAt = time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := requireUser(db, userID); err != nil {
			return err
		}

		var existing models.Summary
		err := db.Where("user_id = ? AND kind = ? AND period_start = ?", userID, summary.Kind, summary.PeriodStart).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			summary.ID = uuid.Nil
			if err := db.Create(summary).Error; err != nil {
				return fmt.Errorf("failed to create summary: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("failed to look up summary: %w", err)
		}

		if err := db.Where("summary_id = ?", existing.ID).Delete(&models.SummaryCategory{}).Error; err != nil {
			return fmt.Errorf("failed to clear summary categories: %w", err)
		}

		if err := db.Model(&existing).Updates(map[string]interface{}{
			"total_spent": summary.TotalSpent,
			"updated_at":  summary.UpdatedAt,
		}).Error; err != nil {
			return fmt.Errorf("failed to update summary: %w", err)
		}

		summary.ID = existing.ID
		for i := range summary.Categories {
			summary.Categories[i].ID = uuid.Nil
			summary.Categories[i].SummaryID = existing.ID
		}
		if len(summary.Categories) > 0 {
			if err := db.Create(&summary.Categories).Error; err != nil {
				return fmt.Errorf("failed to write summary categories: %w", err)
			}
		}
		return nil
	})
}

// ListSummaries returns stored summaries for userID with their categories
func (r *LedgerRepository) ListSummaries(ctx context.Context, userID uuid.UUID, kind string) ([]models.Summary, error) {
	if kind != "" && !models.IsValidSummaryKind(kind) {
		return nil, models.ErrInvalidSummaryKind
	}

	query := r.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var summaries []models.Summary
	if err := query.Order("kind ASC").Order("period_start ASC").Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	return summaries, nil
}

func requireUser(db *gorm.DB, userID uuid.UUID) error {
	var count int64
	if err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
