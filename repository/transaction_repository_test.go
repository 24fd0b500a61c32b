package repository

import (
	"database/sql"
	"go-bookkeeping-api/model"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var transactionColumns = []string{"id", "account_id", "transaction_type", "amount", "comment", "created_at"}

func TestTransactionRepository_CreateTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)
	now := time.Now()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO transactions (account_id, transaction_type, amount, comment)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`)).
		WithArgs(10, model.TransactionRefill, dec("100.00"), "salary").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(7, now))

	transaction := &model.Transaction{
		AccountID:       10,
		TransactionType: model.TransactionRefill,
		Amount:          dec("100.00"),
		Comment:         "salary",
	}
	err = repo.CreateTransaction(tx, transaction)

	assert.NoError(t, err)
	assert.Equal(t, 7, transaction.ID)
	assert.Equal(t, now, transaction.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ListTransactions(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)

	t.Run("default order is newest first", func(t *testing.T) {
		mock.ExpectQuery(`FROM transactions t\s+JOIN accounts a ON a\.id = t\.account_id\s+WHERE a\.user_id = \$1 ORDER BY t\.created_at DESC`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(transactionColumns).
				AddRow(2, 10, "W", "40.00", "", time.Now()).
				AddRow(1, 10, "R", "100.00", "", time.Now().Add(-time.Hour)))

		transactions, err := repo.ListTransactions(1, TransactionFilter{})

		assert.NoError(t, err)
		assert.Len(t, transactions, 2)
		assert.Equal(t, 2, transactions[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("type, amount and day filters", func(t *testing.T) {
		amount := dec("40.00")
		day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`WHERE a\.user_id = \$1 AND t\.account_id = \$2 AND t\.transaction_type = \$3 AND t\.amount = \$4 AND t\.created_at >= \$5 AND t\.created_at < \$6 ORDER BY t\.amount ASC`).
			WithArgs(1, 10, model.TransactionWithdrawal, amount, day, day.Add(24*time.Hour)).
			WillReturnRows(sqlmock.NewRows(transactionColumns).AddRow(2, 10, "W", "40.00", "", day.Add(time.Hour)))

		transactions, err := repo.ListTransactions(1, TransactionFilter{
			AccountID: 10,
			Type:      model.TransactionWithdrawal,
			Amount:    &amount,
			Date:      &day,
			Ordering:  "amount",
		})

		assert.NoError(t, err)
		assert.Len(t, transactions, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTransactionRepository_GetTransactionByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewTransactionRepository(db)

	t.Run("scoped to the owner through the account join", func(t *testing.T) {
		mock.ExpectQuery(`WHERE t\.id = \$1 AND a\.user_id = \$2 AND \(\$3 = 0 OR t\.account_id = \$3\)`).
			WithArgs(7, 1, 0).
			WillReturnRows(sqlmock.NewRows(transactionColumns).AddRow(7, 10, "R", "100.00", "", time.Now()))

		transaction, err := repo.GetTransactionByID(1, 0, 7)

		assert.NoError(t, err)
		assert.Equal(t, 7, transaction.ID)
		assert.True(t, transaction.Amount.Equal(dec("100.00")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("another user's transaction is not found", func(t *testing.T) {
		mock.ExpectQuery(`WHERE t\.id = \$1 AND a\.user_id = \$2`).
			WithArgs(7, 2, 0).
			WillReturnRows(sqlmock.NewRows(transactionColumns))

		_, err := repo.GetTransactionByID(2, 0, 7)

		assert.Equal(t, sql.ErrNoRows, err)
	})

	t.Run("nested lookup pins the account", func(t *testing.T) {
		mock.ExpectQuery(`WHERE t\.id = \$1 AND a\.user_id = \$2 AND \(\$3 = 0 OR t\.account_id = \$3\)`).
			WithArgs(7, 1, 99).
			WillReturnRows(sqlmock.NewRows(transactionColumns))

		_, err := repo.GetTransactionByID(1, 99, 7)

		assert.Equal(t, sql.ErrNoRows, err)
	})
}
