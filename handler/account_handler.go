package handler

import (
	"encoding/json"
	"go-bookkeeping-api/common"
	"go-bookkeeping-api/logger"
	"go-bookkeeping-api/model"
	"go-bookkeeping-api/repository"
	"go-bookkeeping-api/service"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(service *service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// CreateAccount godoc
// @Summary      Create a new account
// @Description  Creates a named account with a zero balance. The name must be unique among the caller's accounts.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        account body model.AccountRequest true "Account name"
// @Success      201  {object}  model.Account
// @Failure      400  {object}  common.AppError "Duplicate or invalid name"
// @Failure      401  {object}  common.AppError
// @Router       /api/accounts [post]
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AccountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"name":    req.Name,
	})
	log.Info("Create account request received")

	account, err := h.service.CreateAccount(r.Context(), userID, req.Name)
	if err != nil {
		if err == service.ErrAccountNameTaken {
			return common.NewFieldError(http.StatusBadRequest, "name", err.Error())
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
	return nil
}

// ListAccounts godoc
// @Summary      List accounts
// @Description  Lists the caller's accounts. Supports filtering by name and balance and ordering by either field (prefix with '-' for descending).
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        name query string false "Filter by exact name"
// @Param        balance query number false "Filter by exact balance"
// @Param        ordering query string false "Order by name or balance"
// @Success      200  {array}   model.Account
// @Failure      401  {object}  common.AppError
// @Router       /api/accounts [get]
func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	filter := repository.AccountFilter{
		Name:     r.URL.Query().Get("name"),
		Ordering: r.URL.Query().Get("ordering"),
	}
	if raw := r.URL.Query().Get("balance"); raw != "" {
		balance, err := decimal.NewFromString(raw)
		if err != nil {
			return common.NewFieldError(http.StatusBadRequest, "balance", "must be a decimal number")
		}
		filter.Balance = &balance
	}

	accounts, err := h.service.ListAccounts(r.Context(), userID, filter)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve accounts", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(accounts)
	return nil
}

// GetAccount godoc
// @Summary      Retrieve an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "Account ID"
// @Success      200  {object}  model.Account
// @Failure      404  {object}  common.AppError "Account absent or owned by another user"
// @Router       /api/accounts/{accountId} [get]
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := pathID(r, "accountId")
	if appErr != nil {
		return appErr
	}

	account, err := h.service.GetAccount(userID, accountID)
	if err != nil {
		if err == service.ErrAccountNotFound {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve account", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// UpdateAccount godoc
// @Summary      Rename an account
// @Description  Changes the account name. The balance cannot be modified through this endpoint.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        accountId path int true "Account ID"
// @Param        account body model.AccountRequest true "New account name"
// @Success      200  {object}  model.Account
// @Failure      400  {object}  common.AppError "Duplicate or invalid name"
// @Failure      404  {object}  common.AppError
// @Router       /api/accounts/{accountId} [put]
func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AccountRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := pathID(r, "accountId")
	if appErr != nil {
		return appErr
	}

	account, err := h.service.RenameAccount(r.Context(), userID, accountID, req.Name)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrAccountNameTaken:
			return common.NewFieldError(http.StatusBadRequest, "name", err.Error())
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not rename account", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(account)
	return nil
}

// DeleteAccount godoc
// @Summary      Delete an account
// @Description  Deletes the account and every transaction recorded against it.
// @Tags         accounts
// @Security     BearerAuth
// @Param        accountId path int true "Account ID"
// @Success      204
// @Failure      404  {object}  common.AppError
// @Router       /api/accounts/{accountId} [delete]
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := pathID(r, "accountId")
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteAccount(r.Context(), userID, accountID); err != nil {
		if err == service.ErrAccountNotFound {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not delete account", err)
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid "+name+" in URL path", err)
	}
	return id, nil
}
