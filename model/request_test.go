package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantID   int
		wantName string
	}{
		{"numeric id", `{"account": 42}`, 42, ""},
		{"numeric string", `{"account": "42"}`, 42, ""},
		{"account name", `{"account": "Savings"}`, 0, "Savings"},
		{"absent", `{}`, 0, ""},
		{"null", `{"account": null}`, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateTransactionRequest
			err := json.Unmarshal([]byte(tt.payload), &req)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, req.Account.ID)
			assert.Equal(t, tt.wantName, req.Account.Name)
			assert.Equal(t, tt.wantID == 0 && tt.wantName == "", req.Account.IsZero())
		})
	}
}

func TestTransactionType_Delta(t *testing.T) {
	amount := decimal.RequireFromString("25.50")

	assert.True(t, TransactionRefill.Delta(amount).Equal(amount))
	assert.True(t, TransactionWithdrawal.Delta(amount).Equal(amount.Neg()))

	assert.True(t, TransactionRefill.IsValid())
	assert.True(t, TransactionWithdrawal.IsValid())
	assert.False(t, TransactionType("X").IsValid())
	assert.False(t, TransactionType("").IsValid())
}
