// file: model/request.go

package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// RegisterRequest defines the payload for creating a new user. Password2 is
// the confirmation field and must match Password.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Password2 string `json:"password2" validate:"required"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest defines the payload for rotating an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AccountRequest defines the payload for creating or renaming an account.
type AccountRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

// AccountRef identifies an account by either its numeric id or its name.
// The wire value may be a JSON number, a numeric string, or a plain name.
type AccountRef struct {
	ID   int
	Name string
}

func (r *AccountRef) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		return nil
	}
	if s[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if id, err := strconv.Atoi(name); err == nil {
			r.ID = id
			return nil
		}
		r.Name = name
		return nil
	}
	return json.Unmarshal(data, &r.ID)
}

// IsZero reports whether the reference was absent from the payload.
func (r AccountRef) IsZero() bool {
	return r.ID == 0 && r.Name == ""
}

// CreateTransactionRequest defines the payload for recording a withdrawal or
// refill. Account may be omitted on the nested per-account route, where the
// account id comes from the URL instead.
type CreateTransactionRequest struct {
	Account         AccountRef      `json:"account"`
	TransactionType TransactionType `json:"transaction_type" validate:"required,oneof=W R"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
	Comment         string          `json:"comment"`
}
