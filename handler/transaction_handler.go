package handler

import (
	"encoding/json"
	"go-bookkeeping-api/common"
	"go-bookkeeping-api/model"
	"go-bookkeeping-api/repository"
	"go-bookkeeping-api/service"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionHandler serves the ledger endpoints. The same handlers back
// both the global /api/transactions routes and the per-account nested
// routes; the nested ones carry an accountId path parameter that scopes
// every operation to that account.
type TransactionHandler struct {
	service *service.TransactionService
}

func NewTransactionHandler(s *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateTransaction godoc
// @Summary      Record a withdrawal or refill
// @Description  Validates the amount, atomically adjusts the account balance and appends a ledger entry. On the nested route the account comes from the URL; on the global route the payload references it by name or id.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transaction body model.CreateTransactionRequest true "Transaction details"
// @Success      201  {object}  model.Transaction
// @Failure      400  {object}  common.AppError "Non-positive amount, bad precision or insufficient funds"
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError "Account absent or owned by another user"
// @Router       /api/transactions [post]
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.CreateTransactionRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := optionalAccountID(r)
	if appErr != nil {
		return appErr
	}

	transaction, err := h.service.CreateTransaction(r.Context(), userID, accountID, req)
	if err != nil {
		switch err {
		case service.ErrAccountNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrAccountRequired:
			return common.NewFieldError(http.StatusBadRequest, "account", err.Error())
		case service.ErrInvalidType:
			return common.NewFieldError(http.StatusBadRequest, "transaction_type", err.Error())
		case service.ErrInvalidAmount, service.ErrAmountPrecision, service.ErrInsufficientFunds:
			return common.NewFieldError(http.StatusBadRequest, "amount", err.Error())
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not create transaction", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(transaction)
	return nil
}

// ListTransactions godoc
// @Summary      List transactions
// @Description  Lists ledger entries across the caller's accounts, newest first. Supports filtering by account, transaction_type, amount and date, and ordering by those fields.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        account query int false "Filter by account id"
// @Param        transaction_type query string false "Filter by type (W or R)"
// @Param        amount query number false "Filter by exact amount"
// @Param        date query string false "Filter by UTC day (YYYY-MM-DD)"
// @Param        ordering query string false "Order by account, transaction_type, date or amount"
// @Success      200  {array}   model.Transaction
// @Failure      401  {object}  common.AppError
// @Router       /api/transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := optionalAccountID(r)
	if appErr != nil {
		return appErr
	}

	filter, appErr := transactionFilterFromQuery(r)
	if appErr != nil {
		return appErr
	}

	transactions, err := h.service.ListTransactions(userID, accountID, filter)
	if err != nil {
		if err == service.ErrAccountNotFound {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transactions", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transactions)
	return nil
}

// GetTransaction godoc
// @Summary      Retrieve a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        transactionId path int true "Transaction ID"
// @Success      200  {object}  model.Transaction
// @Failure      404  {object}  common.AppError "Transaction absent or owned by another user"
// @Router       /api/transactions/{transactionId} [get]
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := optionalAccountID(r)
	if appErr != nil {
		return appErr
	}

	transactionID, appErr := pathID(r, "transactionId")
	if appErr != nil {
		return appErr
	}

	transaction, err := h.service.GetTransaction(userID, accountID, transactionID)
	if err != nil {
		if err == service.ErrTransactionNotFound {
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not retrieve transaction", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(transaction)
	return nil
}

// DeleteTransaction godoc
// @Summary      Delete a transaction
// @Description  Removes the ledger entry and reverses its effect on the account balance in the same unit of work. Rejected when reversing a refill would drive the balance negative.
// @Tags         transactions
// @Security     BearerAuth
// @Param        transactionId path int true "Transaction ID"
// @Success      204
// @Failure      400  {object}  common.AppError "Reversal would overdraw the account"
// @Failure      404  {object}  common.AppError
// @Router       /api/transactions/{transactionId} [delete]
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, appErr := userIDFromContext(r)
	if appErr != nil {
		return appErr
	}

	accountID, appErr := optionalAccountID(r)
	if appErr != nil {
		return appErr
	}

	transactionID, appErr := pathID(r, "transactionId")
	if appErr != nil {
		return appErr
	}

	if err := h.service.DeleteTransaction(r.Context(), userID, accountID, transactionID); err != nil {
		switch err {
		case service.ErrTransactionNotFound:
			return common.NewAppError(http.StatusNotFound, err.Error(), nil)
		case service.ErrInsufficientFunds:
			return common.NewFieldError(http.StatusBadRequest, "amount", err.Error())
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not delete transaction", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// optionalAccountID reads the accountId path parameter on the nested
// routes; the global routes have none and yield zero.
func optionalAccountID(r *http.Request) (int, *common.AppError) {
	if r.PathValue("accountId") == "" {
		return 0, nil
	}
	return pathID(r, "accountId")
}

func transactionFilterFromQuery(r *http.Request) (repository.TransactionFilter, *common.AppError) {
	q := r.URL.Query()
	filter := repository.TransactionFilter{
		Type:     model.TransactionType(q.Get("transaction_type")),
		Ordering: q.Get("ordering"),
	}

	if filter.Type != "" && !filter.Type.IsValid() {
		return filter, common.NewFieldError(http.StatusBadRequest, "transaction_type", "must be one of: W R")
	}
	if raw := q.Get("account"); raw != "" {
		accountID, err := strconv.Atoi(raw)
		if err != nil || accountID <= 0 {
			return filter, common.NewFieldError(http.StatusBadRequest, "account", "must be a positive integer")
		}
		filter.AccountID = accountID
	}
	if raw := q.Get("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, common.NewFieldError(http.StatusBadRequest, "amount", "must be a decimal number")
		}
		filter.Amount = &amount
	}
	if raw := q.Get("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, common.NewFieldError(http.StatusBadRequest, "date", "must be formatted YYYY-MM-DD")
		}
		filter.Date = &day
	}

	return filter, nil
}
