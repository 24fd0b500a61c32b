package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-bookkeeping-api/logger"
	"go-bookkeeping-api/model"
	"go-bookkeeping-api/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountRequired     = errors.New("account is required")
	ErrInvalidType         = errors.New("transaction type must be W or R")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountPrecision     = errors.New("amount must have at most 2 decimal places")
	ErrInsufficientFunds   = errors.New("insufficient funds in the account")
)

// TransactionService is the only component that changes account balances.
// Every mutation couples a server-side balance delta with a ledger write in
// one SQL transaction, so concurrent requests against the same account
// cannot lose an update and a failed request leaves no partial change.
type TransactionService struct {
	db              *sql.DB
	accountRepo     repository.IAccountRepository
	transactionRepo repository.ITransactionRepository
	cache           ICacheClient
}

func NewTransactionService(db *sql.DB, accountRepo repository.IAccountRepository, transactionRepo repository.ITransactionRepository, cache ICacheClient) *TransactionService {
	return &TransactionService{
		db:              db,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		cache:           cache,
	}
}

// CreateTransaction validates and records a withdrawal or refill against
// one of the user's accounts. accountID pins the account on the nested
// route; when zero, the account comes from the request's name-or-id
// reference.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID, accountID int, req model.CreateTransactionRequest) (*model.Transaction, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":          userID,
		"transaction_type": req.TransactionType,
		"amount":           req.Amount.String(),
	})
	log.Info("Starting transaction creation")

	account, err := s.resolveAccount(userID, accountID, req.Account)
	if err != nil {
		return nil, err
	}

	if !req.TransactionType.IsValid() {
		return nil, ErrInvalidType
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.Amount.Exponent() < -2 {
		return nil, ErrAmountPrecision
	}
	if req.TransactionType == model.TransactionWithdrawal && req.Amount.GreaterThan(account.Balance) {
		return nil, ErrInsufficientFunds
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The delta is applied relative to the stored balance, not the one read
	// above, so two requests racing on the same account both land. The
	// repository's guard re-checks the withdrawal bound under that race.
	if _, err := s.accountRepo.ApplyBalanceDelta(tx, account.ID, req.TransactionType.Delta(req.Amount)); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("could not apply balance change: %w", err)
	}

	transaction := &model.Transaction{
		AccountID:       account.ID,
		TransactionType: req.TransactionType,
		Amount:          req.Amount,
		Comment:         req.Comment,
	}
	if err := s.transactionRepo.CreateTransaction(tx, transaction); err != nil {
		return nil, fmt.Errorf("could not create transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	s.cache.Del(ctx, accountCacheKey(userID))

	log.WithField("transaction_id", transaction.ID).Info("Transaction created successfully")
	return transaction, nil
}

// ListTransactions lists ledger entries across the user's accounts. When
// accountID is set (nested route), the account must exist and be owned by
// the user; listing an unknown account is a not-found, not an empty list.
func (s *TransactionService) ListTransactions(userID, accountID int, filter repository.TransactionFilter) ([]*model.Transaction, error) {
	if accountID != 0 {
		if _, err := s.accountRepo.GetAccountByID(userID, accountID); err != nil {
			if err == sql.ErrNoRows {
				return nil, ErrAccountNotFound
			}
			return nil, err
		}
		filter.AccountID = accountID
	}

	return s.transactionRepo.ListTransactions(userID, filter)
}

// GetTransaction retrieves one ledger entry scoped to the user's accounts.
func (s *TransactionService) GetTransaction(userID, accountID, transactionID int) (*model.Transaction, error) {
	transaction, err := s.transactionRepo.GetTransactionByID(userID, accountID, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction removes a ledger entry and reverses its balance effect
// in the same SQL transaction, keeping the ledger sum equal to the balance.
// Deleting a refill whose funds were already withdrawn again would drive
// the balance negative, so that delete is rejected.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, accountID, transactionID int) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":        userID,
		"transaction_id": transactionID,
	})
	log.Info("Starting transaction deletion")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	transaction, err := s.transactionRepo.GetTransactionForUpdate(tx, userID, accountID, transactionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrTransactionNotFound
		}
		return err
	}

	reverse := transaction.TransactionType.Delta(transaction.Amount).Neg()
	if _, err := s.accountRepo.ApplyBalanceDelta(tx, transaction.AccountID, reverse); err != nil {
		if err == sql.ErrNoRows {
			return ErrInsufficientFunds
		}
		return fmt.Errorf("could not reverse balance change: %w", err)
	}

	if err := s.transactionRepo.DeleteTransaction(tx, transaction.ID); err != nil {
		return fmt.Errorf("could not delete transaction record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	s.cache.Del(ctx, accountCacheKey(userID))

	log.Info("Transaction deleted successfully")
	return nil
}

// resolveAccount maps the URL account id or the payload's name-or-id
// reference to one of the user's accounts.
func (s *TransactionService) resolveAccount(userID, accountID int, ref model.AccountRef) (*model.Account, error) {
	if accountID == 0 {
		if ref.IsZero() {
			return nil, ErrAccountRequired
		}
		accountID = ref.ID
	}

	var (
		account *model.Account
		err     error
	)
	if accountID != 0 {
		account, err = s.accountRepo.GetAccountByID(userID, accountID)
	} else {
		account, err = s.accountRepo.GetAccountByName(userID, ref.Name)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}
