package router

import (
	"go-bookkeeping-api/common"
	"go-bookkeeping-api/handler"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter(userHandler *handler.UserHandler, accountHandler *handler.AccountHandler, transactionHandler *handler.TransactionHandler) http.Handler {
	mux := http.NewServeMux()

	// protected chains JWT auth in front of an AppError-returning handler.
	protected := func(h func(http.ResponseWriter, *http.Request) *common.AppError) http.Handler {
		return handler.AuthMiddleware(handler.ErrorHandlingMiddleware(h))
	}

	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.Handle("GET /swagger/", httpSwagger.Handler())

	mux.Handle("POST /register", handler.ErrorHandlingMiddleware(userHandler.Register))
	mux.Handle("POST /login", handler.ErrorHandlingMiddleware(userHandler.Login))
	mux.Handle("POST /api/token/refresh", handler.ErrorHandlingMiddleware(userHandler.Refresh))
	mux.Handle("POST /api/logout", protected(userHandler.Logout))

	mux.Handle("GET /api/accounts", protected(accountHandler.ListAccounts))
	mux.Handle("POST /api/accounts", protected(accountHandler.CreateAccount))
	mux.Handle("GET /api/accounts/{accountId}", protected(accountHandler.GetAccount))
	mux.Handle("PUT /api/accounts/{accountId}", protected(accountHandler.UpdateAccount))
	mux.Handle("DELETE /api/accounts/{accountId}", protected(accountHandler.DeleteAccount))

	mux.Handle("GET /api/transactions", protected(transactionHandler.ListTransactions))
	mux.Handle("POST /api/transactions", protected(transactionHandler.CreateTransaction))
	mux.Handle("GET /api/transactions/{transactionId}", protected(transactionHandler.GetTransaction))
	mux.Handle("DELETE /api/transactions/{transactionId}", protected(transactionHandler.DeleteTransaction))

	// The nested routes reuse the same handlers; the accountId path value
	// pins every operation to that account.
	mux.Handle("GET /api/accounts/{accountId}/transactions", protected(transactionHandler.ListTransactions))
	mux.Handle("POST /api/accounts/{accountId}/transactions", protected(transactionHandler.CreateTransaction))
	mux.Handle("GET /api/accounts/{accountId}/transactions/{transactionId}", protected(transactionHandler.GetTransaction))
	mux.Handle("DELETE /api/accounts/{accountId}/transactions/{transactionId}", protected(transactionHandler.DeleteTransaction))

	return mux
}
