// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"go-bookkeeping-api/model"
	"go-bookkeeping-api/repository"
	"time"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountNameTaken = errors.New("the account with such name already exists")
)

const accountCacheTTL = 10 * time.Minute

// AccountService owns the account lifecycle. The balance is read-only from
// here; only the transaction service changes it.
type AccountService struct {
	repo  repository.IAccountRepository
	cache ICacheClient
}

func NewAccountService(repo repository.IAccountRepository, cache ICacheClient) *AccountService {
	return &AccountService{
		repo:  repo,
		cache: cache,
	}
}

func accountCacheKey(userID int) string {
	return fmt.Sprintf("accounts:%d", userID)
}

// CreateAccount creates a new account for the user after checking the
// per-owner name uniqueness, then invalidates the user's account cache.
func (s *AccountService) CreateAccount(ctx context.Context, userID int, name string) (*model.Account, error) {
	exists, err := s.repo.ExistsByName(userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAccountNameTaken
	}

	account := &model.Account{
		UserID: userID,
		Name:   name,
	}
	if err := s.repo.CreateAccount(account); err != nil {
		return nil, err
	}

	s.cache.Del(ctx, accountCacheKey(userID))

	return account, nil
}

// ListAccounts lists the user's accounts. The unfiltered listing uses a
// cache-aside strategy; filtered or ordered requests go straight to the
// database since their result sets are too varied to cache usefully.
func (s *AccountService) ListAccounts(ctx context.Context, userID int, filter repository.AccountFilter) ([]*model.Account, error) {
	unfiltered := filter == (repository.AccountFilter{})
	cacheKey := accountCacheKey(userID)

	if unfiltered {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var accounts []*model.Account
			if err := json.Unmarshal([]byte(cached), &accounts); err == nil {
				return accounts, nil
			}
		}
	}

	accounts, err := s.repo.GetAccountsForUser(userID, filter)
	if err != nil {
		return nil, err
	}

	if unfiltered {
		if data, err := json.Marshal(accounts); err == nil {
			s.cache.Set(ctx, cacheKey, data, accountCacheTTL)
		}
	}

	return accounts, nil
}

// GetAccount retrieves one account scoped to its owner.
func (s *AccountService) GetAccount(userID, accountID int) (*model.Account, error) {
	account, err := s.repo.GetAccountByID(userID, accountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// RenameAccount changes the account name, re-checking the per-owner
// uniqueness against other accounts.
func (s *AccountService) RenameAccount(ctx context.Context, userID, accountID int, name string) (*model.Account, error) {
	existing, err := s.repo.GetAccountByName(userID, name)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if existing != nil && existing.ID != accountID {
		return nil, ErrAccountNameTaken
	}

	account, err := s.repo.RenameAccount(userID, accountID, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	s.cache.Del(ctx, accountCacheKey(userID))

	return account, nil
}

// DeleteAccount removes the account together with its transaction history.
func (s *AccountService) DeleteAccount(ctx context.Context, userID, accountID int) error {
	deleted, err := s.repo.DeleteAccount(userID, accountID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountNotFound
	}

	s.cache.Del(ctx, accountCacheKey(userID))

	return nil
}
