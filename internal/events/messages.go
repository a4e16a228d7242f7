package events

import (
	"encoding/json"
	"time"
)

// Ledger names which side of the books an event refers to.
type Ledger string

const (
	LedgerIncome  Ledger = "income"
	LedgerExpense Ledger = "expense"
)

// Action names what happened to the record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// LedgerChange is a lightweight change notification. It carries only
// identifiers; a consumer fetches the full record from the database.
type LedgerChange struct {
	Ledger    Ledger    `json:"ledger"`
	Action    Action    `json:"action"`
	UserID    int64     `json:"user_id"`
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerChange(ledger Ledger, action Action, userID, recordID int64) *LedgerChange {
	return &LedgerChange{
		Ledger:    ledger,
		Action:    action,
		UserID:    userID,
		RecordID:  recordID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChange) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangeFromJSON creates a message from JSON bytes
func LedgerChangeFromJSON(data []byte) (*LedgerChange, error) {
	var msg LedgerChange
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
