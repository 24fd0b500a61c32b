// file: app/testapp.go

package app

import (
	"database/sql"
	"go-bookkeeping-api/handler"
	"go-bookkeeping-api/repository"
	"go-bookkeeping-api/router"
	"go-bookkeeping-api/service"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// TestApp wires the full application against externally provided database
// and Redis connections, so integration tests can drive the real router.
type TestApp struct {
	DB     *sql.DB
	Redis  *redis.Client
	Router http.Handler
}

// NewTestApp builds the same dependency graph as Run, minus the HTTP server.
func NewTestApp(db *sql.DB, redisClient *redis.Client) *TestApp {
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	authService := service.NewAuthService(userRepo, tokenRepo)
	accountService := service.NewAccountService(accountRepo, redisClient)
	transactionService := service.NewTransactionService(db, accountRepo, transactionRepo, redisClient)

	userHandler := handler.NewUserHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	return &TestApp{
		DB:     db,
		Redis:  redisClient,
		Router: router.NewRouter(userHandler, accountHandler, transactionHandler),
	}
}
