// file: service/auth_service_test.go

package service

import (
	"database/sql"
	"go-bookkeeping-api/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(user *model.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *mockUserRepo) GetUserByEmail(email string) (*model.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) GetUserByID(id int) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// TestAuthService_HashAndCheckPassword ensures that password hashing and verification methods work correctly.
func TestAuthService_HashAndCheckPassword(t *testing.T) {
	// Since HashPassword and CheckPasswordHash don't use any repository dependencies,
	// we can instantiate AuthService with nil repositories for this specific test.
	authService := NewAuthService(nil, nil)
	password := "mySecretPassword123"

	// 1. Test Hashing
	hashedPassword, err := authService.HashPassword(password)
	if err != nil {
		t.Fatalf("authService.HashPassword() returned an unexpected error: %v", err)
	}

	if hashedPassword == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	// 2. Test Successful Verification
	match := authService.CheckPasswordHash(password, hashedPassword)
	if !match {
		t.Errorf("authService.CheckPasswordHash() should have returned true for a matching password, but got false.")
	}

	// 3. Test Failed Verification
	wrongPassword := "notMyPassword"
	match = authService.CheckPasswordHash(wrongPassword, hashedPassword)
	if match {
		t.Errorf("authService.CheckPasswordHash() should have returned false for a non-matching password, but got true.")
	}
}

func TestAuthService_Register(t *testing.T) {
	req := model.RegisterRequest{
		Username:  "bookkeeper",
		Email:     "bookkeeper@example.com",
		Password:  "password123",
		Password2: "password123",
	}

	t.Run("success", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, nil)

		mockRepo.On("GetUserByEmail", req.Email).Return(nil, sql.ErrNoRows).Once()
		mockRepo.On("CreateUser", mock.MatchedBy(func(u *model.User) bool {
			return u.Username == req.Username && u.Email == req.Email && u.Password != req.Password
		})).Return(nil).Once()

		user, err := authService.Register(req)

		assert.NoError(t, err)
		assert.Empty(t, user.Password, "password hash must not leak in the response")
		mockRepo.AssertExpectations(t)
	})

	t.Run("password confirmation mismatch", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, nil)

		mismatched := req
		mismatched.Password2 = "different"
		_, err := authService.Register(mismatched)

		assert.Equal(t, ErrPasswordMismatch, err)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, nil)

		mockRepo.On("GetUserByEmail", req.Email).Return(&model.User{ID: 1, Email: req.Email}, nil).Once()

		_, err := authService.Register(req)

		assert.Equal(t, ErrEmailTaken, err)
		mockRepo.AssertNotCalled(t, "CreateUser")
	})
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, nil)

		mockRepo.On("GetUserByEmail", "ghost@example.com").Return(nil, sql.ErrNoRows).Once()

		_, err := authService.Login("ghost@example.com", "password123")

		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		mockRepo := new(mockUserRepo)
		authService := NewAuthService(mockRepo, nil)

		hash, err := authService.HashPassword("correct-password")
		assert.NoError(t, err)
		mockRepo.On("GetUserByEmail", "user@example.com").Return(&model.User{ID: 1, Password: hash}, nil).Once()

		_, err = authService.Login("user@example.com", "wrong-password")

		assert.Equal(t, ErrInvalidCredentials, err)
	})
}
