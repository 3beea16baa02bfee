package finance

import (
	"strings"
	"time"
)

// TransactionType distinguishes money in from money out.
type TransactionType string

const (
	Credit TransactionType = "CREDIT"
	Debit  TransactionType = "DEBIT"
)

// Transaction is one bank movement as ingested from the account feed. It is
// immutable; classification and advice are derived side-car results.
type Transaction struct {
	ID           string          `json:"transaction_id"`
	UserID       string          `json:"user_id"`
	Amount       float64         `json:"amount"`
	Type         TransactionType `json:"type"`
	Narration    string          `json:"narration,omitempty"`
	Date         time.Time       `json:"date,omitempty"`
	BalanceAfter *float64        `json:"balance_after_transaction,omitempty"`
}

// Kind normalizes the transaction type for comparisons.
func (t *Transaction) Kind() TransactionType {
	return TransactionType(strings.ToUpper(strings.TrimSpace(string(t.Type))))
}
