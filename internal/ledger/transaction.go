// Package ledger turns a raw log of income and expense records into grouped
// views, category distributions, totals and weekly/monthly rollups, and parses
// free-text quick-add phrases into records. Everything here is pure: no I/O,
// no shared state.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrMalformedRecord marks a record that cannot take part in aggregation.
var ErrMalformedRecord = errors.New("malformed record")

// AmountPlaces is the number of decimal places amounts are stored with.
const AmountPlaces = 2

// RoundAmount rounds d half away from zero to AmountPlaces, the same way a
// decimal(15,2) column stores it.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountPlaces)
}

// Transaction is a single raw entry of an account's log.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	IsIncome    bool            `json:"is_income"`
}

// MalformedRecordError explains why a record was excluded. Index is the
// position of the record in the input it was rejected from.
type MalformedRecordError struct {
	Index  int
	ID     uuid.UUID
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record at index %d: %s", e.Index, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Validate reports whether tx can be aggregated. A missing or non-positive
// amount and a blank category are the only reasons for rejection.
func Validate(tx Transaction) error {
	switch {
	case tx.Amount.IsZero():
		return &MalformedRecordError{ID: tx.ID, Reason: "amount is missing"}
	case tx.Amount.IsNegative():
		return &MalformedRecordError{ID: tx.ID, Reason: "amount must be positive"}
	case strings.TrimSpace(tx.Category) == "":
		return &MalformedRecordError{ID: tx.ID, Reason: "category is missing"}
	}
	return nil
}

// Partition splits txs into the records that aggregate and the ones that are
// excluded. Both outputs keep input order.
func Partition(txs []Transaction) ([]Transaction, []*MalformedRecordError) {
	valid := make([]Transaction, 0, len(txs))
	var rejected []*MalformedRecordError

	for i, tx := range txs {
		if err := Validate(tx); err != nil {
			var malformed *MalformedRecordError
			if errors.As(err, &malformed) {
				malformed.Index = i
				rejected = append(rejected, malformed)
			}
			continue
		}
		valid = append(valid, tx)
	}

	return valid, rejected
}

func isValid(tx Transaction) bool {
	return Validate(tx) == nil
}
