package booktracker_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/booktrackerhq/booktracker"
)

func TestInitializePasswordReset(t *testing.T) {
	userID := uuid.New()

	t.Run("Stores a reset hash for known accounts", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").
			Return(&booktracker.User{ID: userID, Email: "a@b.com", Activated: true}, nil)

		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		tokens := &MockTokenStore{}
		tokens.On("Put", mock.Anything, booktracker.ScopeReset, mock.Anything, userID.String(), booktracker.ResetTokenTTL).
			Return(nil)

		handler := booktracker.NewInitializePasswordResetHandler(repo, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.InitializePasswordResetMessage{Email: "a@b.com"})
		require.NoError(t, err)
		tokens.AssertExpectations(t)
	})

	t.Run("Unknown email succeeds silently", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "nobody@b.com").Return(nil, notFoundErr())

		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		tokens := &MockTokenStore{}

		handler := booktracker.NewInitializePasswordResetHandler(repo, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.InitializePasswordResetMessage{Email: "nobody@b.com"})
		assert.NoError(t, err)
		tokens.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store failure propagates", func(t *testing.T) {
		users := &MockUsers{}
		users.On("GetByIdentifier", mock.Anything, "a@b.com").
			Return(&booktracker.User{ID: userID, Email: "a@b.com"}, nil)

		repo := &MockRepositoryManager{}
		repo.On("Users").Return(users)

		tokens := &MockTokenStore{}
		tokens.On("Put", mock.Anything, booktracker.ScopeReset, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("redis down"))

		handler := booktracker.NewInitializePasswordResetHandler(repo, tokens, noopMailer{}).
			WithLogger(testLogger{})

		err := handler.Execute(context.Background(), booktracker.InitializePasswordResetMessage{Email: "a@b.com"})
		assert.Error(t, err)
	})
}
