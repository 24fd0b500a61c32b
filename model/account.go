package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a named balance ledger owned by a single user. The (owner, name)
// pair is unique and the balance never goes below zero. Only the transaction
// service may change the balance.
type Account struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
