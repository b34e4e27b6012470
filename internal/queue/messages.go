package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Reasons a summary recompute was requested.
const (
	ReasonTransactionsChanged = "transactions_changed"
	ReasonManual              = "manual"
)

var ErrInvalidMessage = errors.New("invalid summary request")

// SummaryRequest asks the worker to recompute the week and month containing
// Date for one user. It carries no amounts: the worker reads the log itself.
type SummaryRequest struct {
	UserID    uuid.UUID `json:"user_id"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSummaryRequest creates a request stamped with the current time
func NewSummaryRequest(userID uuid.UUID, date time.Time, reason string) *SummaryRequest {
	return &SummaryRequest{
		UserID:    userID,
		Date:      date.UTC(),
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SummaryRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SummaryRequestFromJSON decodes and checks a message body
func SummaryRequestFromJSON(data []byte) (*SummaryRequest, error) {
	var msg SummaryRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing user_id", ErrInvalidMessage)
	}
	if msg.Date.IsZero() {
		return nil, fmt.Errorf("%w: missing date", ErrInvalidMessage)
	}
	return &msg, nil
}
