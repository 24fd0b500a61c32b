package common

import (
	"go-bookkeeping-api/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAndDecode(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		body := `{"username":"bookkeeper","email":"bk@example.com","password":"password123","password2":"password123"}`
		r := httptest.NewRequest("POST", "/register", strings.NewReader(body))

		var req model.RegisterRequest
		appErr := ValidateAndDecode(r, &req)

		assert.Nil(t, appErr)
		assert.Equal(t, "bookkeeper", req.Username)
	})

	t.Run("violations are keyed by field", func(t *testing.T) {
		body := `{"username":"ab","email":"not-an-email","password":"short","password2":"short"}`
		r := httptest.NewRequest("POST", "/register", strings.NewReader(body))

		var req model.RegisterRequest
		appErr := ValidateAndDecode(r, &req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
		assert.Contains(t, appErr.Fields, "username")
		assert.Contains(t, appErr.Fields, "email")
		assert.Contains(t, appErr.Fields, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/register", strings.NewReader(`{"username":`))

		var req model.RegisterRequest
		appErr := ValidateAndDecode(r, &req)

		assert.NotNil(t, appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.Code)
	})
}
