package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the single-letter wire code for a balance mutation.
type TransactionType string

const (
	TransactionWithdrawal TransactionType = "W"
	TransactionRefill     TransactionType = "R"
)

// IsValid reports whether t is one of the two known transaction types.
func (t TransactionType) IsValid() bool {
	return t == TransactionWithdrawal || t == TransactionRefill
}

// Delta returns the signed balance change for an amount of this type:
// negative for withdrawals, positive for refills.
func (t TransactionType) Delta(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionWithdrawal {
		return amount.Neg()
	}
	return amount
}

// Transaction is an immutable ledger entry recording a single balance change
// against one account. Records are never updated after creation.
type Transaction struct {
	ID              int             `json:"id"`
	AccountID       int             `json:"account_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Comment         string          `json:"comment"`
	CreatedAt       time.Time       `json:"date"`
}
