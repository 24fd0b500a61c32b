package common

import (
	"encoding/json"
	"go-bookkeeping-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

// AppError is the single error shape sent to clients. Fields carries
// field-keyed detail for validation failures, e.g. {"amount": "insufficient
// funds in the account"}.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewFieldError builds a validation-style error attributed to one field.
func NewFieldError(code int, field, detail string) *AppError {
	return &AppError{
		Code:    code,
		Message: "validation failed",
		Fields:  map[string]string{field: detail},
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Code)
	json.NewEncoder(w).Encode(e)
}
