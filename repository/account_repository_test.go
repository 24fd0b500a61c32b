package repository

import (
	"database/sql"
	"go-bookkeeping-api/logger"
	"go-bookkeeping-api/model"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestAccountRepository_CreateAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO accounts (user_id, name) VALUES ($1, $2) RETURNING id, balance, created_at`)).
		WithArgs(1, "Savings").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance", "created_at"}).AddRow(10, "0.00", now))

	account := &model.Account{UserID: 1, Name: "Savings"}
	err = repo.CreateAccount(account)

	assert.NoError(t, err)
	assert.Equal(t, 10, account.ID)
	assert.True(t, account.Balance.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ApplyBalanceDelta(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	// The update is expressed relative to the stored balance with the
	// non-negative guard in the WHERE clause. This is the shape that keeps
	// concurrent mutations against one account from losing updates.
	deltaQuery := regexp.QuoteMeta(`UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0 RETURNING balance`)

	t.Run("credit", func(t *testing.T) {
		mock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		mock.ExpectQuery(deltaQuery).
			WithArgs(dec("25.50"), 10).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("125.50"))

		balance, err := repo.ApplyBalanceDelta(tx, 10, dec("25.50"))

		assert.NoError(t, err)
		assert.True(t, balance.Equal(dec("125.50")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("guard rejects an overdraw", func(t *testing.T) {
		mock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		mock.ExpectQuery(deltaQuery).
			WithArgs(dec("-150.00"), 10).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))

		_, err = repo.ApplyBalanceDelta(tx, 10, dec("-150.00"))

		assert.Equal(t, sql.ErrNoRows, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetAccountsForUser_Filters(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)
	columns := []string{"id", "user_id", "name", "balance", "created_at"}

	t.Run("no filter defaults to name ascending", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, balance, created_at FROM accounts WHERE user_id = $1 ORDER BY name ASC`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(1, 1, "Checking", "10.00", time.Now()).
				AddRow(2, 1, "Savings", "100.00", time.Now()))

		accounts, err := repo.GetAccountsForUser(1, AccountFilter{})

		assert.NoError(t, err)
		assert.Len(t, accounts, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("name filter and descending balance ordering", func(t *testing.T) {
		balance := dec("100.00")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, balance, created_at FROM accounts WHERE user_id = $1 AND name = $2 AND balance = $3 ORDER BY balance DESC`)).
			WithArgs(1, "Savings", balance).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(2, 1, "Savings", "100.00", time.Now()))

		accounts, err := repo.GetAccountsForUser(1, AccountFilter{Name: "Savings", Balance: &balance, Ordering: "-balance"})

		assert.NoError(t, err)
		assert.Len(t, accounts, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown ordering field falls back to the default", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, balance, created_at FROM accounts WHERE user_id = $1 ORDER BY name ASC`)).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := repo.GetAccountsForUser(1, AccountFilter{Ordering: "id; DROP TABLE accounts"})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetAccountByID_Scoping(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewAccountRepository(db)

	// The owner id is part of the lookup itself, so a foreign account is
	// indistinguishable from a missing one.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, name, balance, created_at FROM accounts WHERE id = $1 AND user_id = $2`)).
		WithArgs(10, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "balance", "created_at"}))

	_, err = repo.GetAccountByID(2, 10)

	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderingClause(t *testing.T) {
	cols := map[string]string{"name": "name", "balance": "balance"}

	assert.Equal(t, " ORDER BY name ASC", orderingClause("name", cols, "name ASC"))
	assert.Equal(t, " ORDER BY balance DESC", orderingClause("-balance", cols, "name ASC"))
	assert.Equal(t, " ORDER BY name ASC", orderingClause("", cols, "name ASC"))
	assert.Equal(t, " ORDER BY name ASC", orderingClause("bogus", cols, "name ASC"))
}
