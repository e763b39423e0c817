package booktracker_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/booktrackerhq/booktracker"
)

func TestFinalizePasswordReset(t *testing.T) {
	userID := uuid.New()
	hash := booktracker.MintTokenHash(userID.String())

	currentHash, err := booktracker.HashPassword("Current1!")
	require.NoError(t, err)

	user := &booktracker.User{
		ID:           userID,
		Email:        "a@b.com",
		PasswordHash: currentHash,
		Activated:    true,
	}

	t.Run("Installs the new password and burns the hash", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, userID.String()).Return(user, nil)
		users.On("ResetPassword", mock.Anything, userID, mock.Anything).Return(nil)

		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		tokens := &MockTokenStore{}
		tokens.On("Get", mock.Anything, booktracker.ScopeReset, hash).Return(userID.String(), nil)
		tokens.On("Delete", mock.Anything, booktracker.ScopeReset, hash).Return(nil)

		handler := booktracker.NewFinalizePasswordResetHandler(repo, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.FinalizePasswordResetMessage{
			Hash:     hash,
			Password: "Fresher1!",
		})
		require.NoError(t, err)

		users.AssertExpectations(t)
		tokens.AssertExpectations(t)
	})

	t.Run("Unknown or expired hash", func(t *testing.T) {
		tokens := &MockTokenStore{}
		tokens.On("Get", mock.Anything, booktracker.ScopeReset, hash).
			Return("", booktracker.ErrTokenNotFound)

		handler := booktracker.NewFinalizePasswordResetHandler(&MockRepositoryManager{}, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.FinalizePasswordResetMessage{
			Hash:     hash,
			Password: "Fresher1!",
		})
		assert.True(t, booktracker.IsTokenNotFoundError(err))
	})

	t.Run("Rejects reusing the current password", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, userID.String()).Return(user, nil)

		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		tokens := &MockTokenStore{}
		tokens.On("Get", mock.Anything, booktracker.ScopeReset, hash).Return(userID.String(), nil)

		handler := booktracker.NewFinalizePasswordResetHandler(repo, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.FinalizePasswordResetMessage{
			Hash:     hash,
			Password: "Current1!",
		})
		require.Error(t, err)
		assert.Equal(t, "PASSWORD_REUSED", textCodeOf(t, err))

		users.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
		tokens.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Burn failure is tolerated", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, userID.String()).Return(user, nil)
		users.On("ResetPassword", mock.Anything, userID, mock.Anything).Return(nil)

		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		tokens := &MockTokenStore{}
		tokens.On("Get", mock.Anything, booktracker.ScopeReset, hash).Return(userID.String(), nil)
		tokens.On("Delete", mock.Anything, booktracker.ScopeReset, hash).
			Return(booktracker.ErrTokenNotFound)

		handler := booktracker.NewFinalizePasswordResetHandler(repo, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.FinalizePasswordResetMessage{
			Hash:     hash,
			Password: "Fresher1!",
		})
		assert.NoError(t, err)
	})
}
