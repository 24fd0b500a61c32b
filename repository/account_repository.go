package repository

import (
	"database/sql"
	"fmt"
	"go-bookkeeping-api/logger"
	"go-bookkeeping-api/model"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AccountFilter narrows and orders account listings. Zero values mean "no
// constraint". Ordering accepts a field name with an optional '-' prefix for
// descending order.
type AccountFilter struct {
	Name     string
	Balance  *decimal.Decimal
	Ordering string
}

// accountOrderColumns whitelists the fields a client may order by.
var accountOrderColumns = map[string]string{
	"name":    "name",
	"balance": "balance",
}

// IAccountRepository defines the contract for account database operations.
// Balance changes go exclusively through ApplyBalanceDelta.
type IAccountRepository interface {
	CreateAccount(account *model.Account) error
	GetAccountsForUser(userID int, filter AccountFilter) ([]*model.Account, error)
	GetAccountByID(userID, accountID int) (*model.Account, error)
	GetAccountByName(userID int, name string) (*model.Account, error)
	ExistsByName(userID int, name string) (bool, error)
	RenameAccount(userID, accountID int, name string) (*model.Account, error)
	DeleteAccount(userID, accountID int) (bool, error)
	ApplyBalanceDelta(tx *sql.Tx, accountID int, delta decimal.Decimal) (decimal.Decimal, error)
}

// AccountRepository implements IAccountRepository on top of Postgres.
type AccountRepository struct {
	DB *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

// CreateAccount adds a new account with a zero balance to the database.
func (r *AccountRepository) CreateAccount(account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": account.UserID,
		"name":    account.Name,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (user_id, name) VALUES ($1, $2) RETURNING id, balance, created_at`
	err := r.DB.QueryRow(query, account.UserID, account.Name).Scan(&account.ID, &account.Balance, &account.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// GetAccountsForUser retrieves the accounts of one user, applying the
// requested filters and ordering.
func (r *AccountRepository) GetAccountsForUser(userID int, filter AccountFilter) ([]*model.Account, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to list accounts")

	query := `SELECT id, user_id, name, balance, created_at FROM accounts WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Name != "" {
		args = append(args, filter.Name)
		query += fmt.Sprintf(" AND name = $%d", len(args))
	}
	if filter.Balance != nil {
		args = append(args, *filter.Balance)
		query += fmt.Sprintf(" AND balance = $%d", len(args))
	}
	query += orderingClause(filter.Ordering, accountOrderColumns, "name ASC")

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list accounts query")
		return nil, err
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.ID, &acc.UserID, &acc.Name, &acc.Balance, &acc.CreatedAt); err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}

// GetAccountByID retrieves one account scoped to its owner. A foreign
// account behaves exactly like a missing one: sql.ErrNoRows.
func (r *AccountRepository) GetAccountByID(userID, accountID int) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": accountID,
	})
	log.Info("Executing query to get account by ID")

	account := &model.Account{}
	query := `SELECT id, user_id, name, balance, created_at FROM accounts WHERE id = $1 AND user_id = $2`
	err := r.DB.QueryRow(query, accountID, userID).Scan(&account.ID, &account.UserID, &account.Name, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by ID query")
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByName retrieves one account by its per-owner unique name.
func (r *AccountRepository) GetAccountByName(userID int, name string) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": userID,
		"name":    name,
	})
	log.Info("Executing query to get account by name")

	account := &model.Account{}
	query := `SELECT id, user_id, name, balance, created_at FROM accounts WHERE user_id = $1 AND name = $2`
	err := r.DB.QueryRow(query, userID, name).Scan(&account.ID, &account.UserID, &account.Name, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute get account by name query")
		}
		return nil, err
	}
	return account, nil
}

// ExistsByName reports whether the user already owns an account with the
// given name.
func (r *AccountRepository) ExistsByName(userID int, name string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM accounts WHERE user_id = $1 AND name = $2)`
	err := r.DB.QueryRow(query, userID, name).Scan(&exists)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute account name existence query")
		return false, err
	}
	return exists, nil
}

// RenameAccount updates the account name, scoped to the owner.
func (r *AccountRepository) RenameAccount(userID, accountID int, name string) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": accountID,
		"new_name":   name,
	})
	log.Info("Executing query to rename account")

	account := &model.Account{}
	query := `UPDATE accounts SET name = $1 WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, name, balance, created_at`
	err := r.DB.QueryRow(query, name, accountID, userID).Scan(&account.ID, &account.UserID, &account.Name, &account.Balance, &account.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute rename account query")
		}
		return nil, err
	}
	return account, nil
}

// DeleteAccount removes the account and, through the schema's cascade, all
// of its transactions. Returns false when no owned account matched.
func (r *AccountRepository) DeleteAccount(userID, accountID int) (bool, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"account_id": accountID,
	})
	log.Info("Executing query to delete account")

	res, err := r.DB.Exec(`DELETE FROM accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete account query")
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ApplyBalanceDelta adjusts the balance by delta as a single server-side
// update. The WHERE guard keeps the balance non-negative even when two
// requests race on the same account; a guard miss surfaces as
// sql.ErrNoRows and nothing is written.
func (r *AccountRepository) ApplyBalanceDelta(tx *sql.Tx, accountID int, delta decimal.Decimal) (decimal.Decimal, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"delta":      delta.String(),
	})
	log.Info("Executing query to apply balance delta")

	var balance decimal.Decimal
	query := `UPDATE accounts SET balance = balance + $1 WHERE id = $2 AND balance + $1 >= 0 RETURNING balance`
	err := tx.QueryRow(query, delta, accountID).Scan(&balance)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Info("Balance delta rejected by non-negative guard")
		} else {
			log.WithError(err).Error("Failed to execute balance delta query")
		}
		return decimal.Decimal{}, err
	}
	return balance, nil
}

// orderingClause translates a client ordering value ("field" or "-field")
// into a safe ORDER BY using the column whitelist.
func orderingClause(ordering string, columns map[string]string, fallback string) string {
	direction := " ASC"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		direction = " DESC"
		field = ordering[1:]
	}
	if col, ok := columns[field]; ok {
		return " ORDER BY " + col + direction
	}
	return " ORDER BY " + fallback
}
