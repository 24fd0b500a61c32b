package repository

import (
	"database/sql"
	"fmt"
	"go-bookkeeping-api/logger"
	"go-bookkeeping-api/model"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TransactionFilter narrows and orders ledger listings. AccountID restricts
// to one account (the nested route sets it from the URL); Date matches a
// whole UTC day.
type TransactionFilter struct {
	AccountID int
	Type      model.TransactionType
	Amount    *decimal.Decimal
	Date      *time.Time
	Ordering  string
}

var transactionOrderColumns = map[string]string{
	"account":          "t.account_id",
	"transaction_type": "t.transaction_type",
	"date":             "t.created_at",
	"amount":           "t.amount",
}

// ITransactionRepository defines the contract for ledger database
// operations. Writes take a *sql.Tx so they commit atomically with the
// balance delta.
type ITransactionRepository interface {
	CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error
	ListTransactions(userID int, filter TransactionFilter) ([]*model.Transaction, error)
	GetTransactionByID(userID, accountID, transactionID int) (*model.Transaction, error)
	GetTransactionForUpdate(tx *sql.Tx, userID, accountID, transactionID int) (*model.Transaction, error)
	DeleteTransaction(tx *sql.Tx, transactionID int) error
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

// CreateTransaction appends a ledger row inside the given SQL transaction.
// The server assigns id and timestamp.
func (r *TransactionRepository) CreateTransaction(tx *sql.Tx, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":       transaction.AccountID,
		"transaction_type": transaction.TransactionType,
		"amount":           transaction.Amount.String(),
	})
	log.Info("Executing query to create a new transaction")

	query := `INSERT INTO transactions (account_id, transaction_type, amount, comment)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`
	err := tx.QueryRow(query, transaction.AccountID, transaction.TransactionType, transaction.Amount, transaction.Comment).
		Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

// ListTransactions retrieves ledger entries across every account the user
// owns, newest first unless the filter orders otherwise.
func (r *TransactionRepository) ListTransactions(userID int, filter TransactionFilter) ([]*model.Transaction, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to list transactions")

	query := `
		SELECT t.id, t.account_id, t.transaction_type, t.amount, t.comment, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.user_id = $1`
	args := []interface{}{userID}

	if filter.AccountID != 0 {
		args = append(args, filter.AccountID)
		query += fmt.Sprintf(" AND t.account_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND t.transaction_type = $%d", len(args))
	}
	if filter.Amount != nil {
		args = append(args, *filter.Amount)
		query += fmt.Sprintf(" AND t.amount = $%d", len(args))
	}
	if filter.Date != nil {
		day := filter.Date.UTC().Truncate(24 * time.Hour)
		args = append(args, day)
		query += fmt.Sprintf(" AND t.created_at >= $%d", len(args))
		args = append(args, day.Add(24*time.Hour))
		query += fmt.Sprintf(" AND t.created_at < $%d", len(args))
	}
	query += orderingClause(filter.Ordering, transactionOrderColumns, "t.created_at DESC")

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list transactions query")
		return nil, err
	}
	defer rows.Close()

	transactions := []*model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.TransactionType, &t.Amount, &t.Comment, &t.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}

// GetTransactionByID retrieves one ledger entry scoped to the user's
// accounts. accountID of zero means "any of the user's accounts" (the
// global route); otherwise the entry must belong to that account.
func (r *TransactionRepository) GetTransactionByID(userID, accountID, transactionID int) (*model.Transaction, error) {
	return scanTransaction(r.DB.QueryRow(transactionByIDQuery, transactionID, userID, accountID))
}

// GetTransactionForUpdate is GetTransactionByID inside a SQL transaction,
// locking the row so a delete and its balance reversal see a stable entry.
func (r *TransactionRepository) GetTransactionForUpdate(tx *sql.Tx, userID, accountID, transactionID int) (*model.Transaction, error) {
	return scanTransaction(tx.QueryRow(transactionByIDQuery+" FOR UPDATE OF t", transactionID, userID, accountID))
}

const transactionByIDQuery = `
	SELECT t.id, t.account_id, t.transaction_type, t.amount, t.comment, t.created_at
	FROM transactions t
	JOIN accounts a ON a.id = t.account_id
	WHERE t.id = $1 AND a.user_id = $2 AND ($3 = 0 OR t.account_id = $3)`

func scanTransaction(row *sql.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := row.Scan(&t.ID, &t.AccountID, &t.TransactionType, &t.Amount, &t.Comment, &t.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get transaction query")
		}
		return nil, err
	}
	return t, nil
}

// DeleteTransaction removes one ledger row inside the given SQL
// transaction. Scoping checks happen before this call.
func (r *TransactionRepository) DeleteTransaction(tx *sql.Tx, transactionID int) error {
	log := logger.Log.WithField("transaction_id", transactionID)
	log.Info("Executing query to delete transaction")

	_, err := tx.Exec(`DELETE FROM transactions WHERE id = $1`, transactionID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete transaction query")
		return err
	}
	return nil
}
