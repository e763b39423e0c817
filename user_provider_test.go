package booktracker_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/booktrackerhq/booktracker"
)

func notFoundErr() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound)
}

func TestVerifyCredentials(t *testing.T) {
	password := "Abcdef1!"
	hash, err := booktracker.HashPassword(password)
	require.NoError(t, err)

	activeUser := &booktracker.User{
		ID:           uuid.New(),
		Email:        "a@b.com",
		Username:     "reader01",
		PasswordHash: hash,
		Activated:    true,
	}

	t.Run("Valid credentials", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").Return(activeUser, nil)

		provider := booktracker.NewUserProvider(users).WithLogger(testLogger{})

		user, err := provider.VerifyCredentials(context.Background(), "a@b.com", password)
		require.NoError(t, err)
		assert.Equal(t, activeUser.ID, user.ID)
		users.AssertExpectations(t)
	})

	t.Run("Unknown identifier", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "nobody@b.com").Return(nil, notFoundErr())

		provider := booktracker.NewUserProvider(users).WithLogger(testLogger{})

		user, err := provider.VerifyCredentials(context.Background(), "nobody@b.com", password)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, booktracker.ErrInvalidCredentials)
	})

	t.Run("Wrong password", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").Return(activeUser, nil)

		provider := booktracker.NewUserProvider(users).WithLogger(testLogger{})

		user, err := provider.VerifyCredentials(context.Background(), "a@b.com", "Wrongpw1!")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, booktracker.ErrInvalidCredentials)
	})

	t.Run("Account not activated", func(t *testing.T) {
		dormant := *activeUser
		dormant.Activated = false

		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").Return(&dormant, nil)

		provider := booktracker.NewUserProvider(users).WithLogger(testLogger{})

		user, err := provider.VerifyCredentials(context.Background(), "a@b.com", password)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, booktracker.ErrAccountNotActivated)
	})

	t.Run("Account not activated wins over a wrong password", func(t *testing.T) {
		dormant := *activeUser
		dormant.Activated = false

		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").Return(&dormant, nil)

		provider := booktracker.NewUserProvider(users).WithLogger(testLogger{})

		user, err := provider.VerifyCredentials(context.Background(), "a@b.com", "Wrongpw1!")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, booktracker.ErrAccountNotActivated)
		assert.NotErrorIs(t, err, booktracker.ErrInvalidCredentials)
	})

	t.Run("Store failure is not invalid credentials", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").
			Return(nil, goerrors.New("connection refused", goerrors.CategoryInternal))

		provider := booktracker.NewUserProvider(users).WithLogger(testLogger{})

		user, err := provider.VerifyCredentials(context.Background(), "a@b.com", password)
		assert.Nil(t, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, booktracker.ErrInvalidCredentials)
	})
}
