package booktracker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/booktrackerhq/booktracker"
)

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()

	id, ok := booktracker.UserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, id)

	ctx = booktracker.WithUserID(ctx, "user-123")

	id, ok = booktracker.UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "user-123", id)
}

func TestRenewedTokenContext(t *testing.T) {
	ctx := context.Background()

	token, ok := booktracker.RenewedTokenFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, token)

	ctx = booktracker.WithRenewedToken(ctx, "jwt-abc")

	token, ok = booktracker.RenewedTokenFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "jwt-abc", token)

	// the two keys do not collide
	id, ok := booktracker.UserIDFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, id)
}
