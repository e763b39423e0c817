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

func TestLogin(t *testing.T) {
	tokens, err := booktracker.NewTokenService(newTestConfig())
	require.NoError(t, err)

	userID := uuid.New()
	user := &booktracker.User{ID: userID, Email: "a@b.com", Activated: true}

	t.Run("Successful login mints both tokens", func(t *testing.T) {
		verifier := &MockCredentialVerifier{}
		verifier.On("VerifyCredentials", mock.Anything, "a@b.com", "Abcdef1!").Return(user, nil)

		users := &MockUsers{}
		users.On("SetLoggedIn", mock.Anything, userID, true).Return(nil)

		auther := booktracker.NewAuthenticator(verifier, tokens).
			WithLogger(testLogger{}).
			WithLoginTracker(users)

		pair, err := auther.Login(context.Background(), "a@b.com", "Abcdef1!")
		require.NoError(t, err)
		require.NotNil(t, pair)

		claims, err := tokens.VerifyAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID())

		claims, err = tokens.VerifySessionToken(pair.SessionToken)
		require.NoError(t, err)
		assert.Equal(t, userID.String(), claims.UserID())

		verifier.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("Verification failure propagates", func(t *testing.T) {
		verifier := &MockCredentialVerifier{}
		verifier.On("VerifyCredentials", mock.Anything, "a@b.com", "bad").
			Return(nil, booktracker.ErrInvalidCredentials)

		auther := booktracker.NewAuthenticator(verifier, tokens).WithLogger(testLogger{})

		pair, err := auther.Login(context.Background(), "a@b.com", "bad")
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, booktracker.ErrInvalidCredentials)
	})

	t.Run("Tracker failure does not fail the login", func(t *testing.T) {
		verifier := &MockCredentialVerifier{}
		verifier.On("VerifyCredentials", mock.Anything, "a@b.com", "Abcdef1!").Return(user, nil)

		users := &MockUsers{}
		users.On("SetLoggedIn", mock.Anything, userID, true).Return(errors.New("db offline"))

		auther := booktracker.NewAuthenticator(verifier, tokens).
			WithLogger(testLogger{}).
			WithLoginTracker(users)

		pair, err := auther.Login(context.Background(), "a@b.com", "Abcdef1!")
		require.NoError(t, err)
		assert.NotNil(t, pair)
	})
}
