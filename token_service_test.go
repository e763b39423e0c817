package booktracker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booktrackerhq/booktracker"
)

type testConfig struct {
	accessSecret  string
	sessionSecret string
	accessTTL     time.Duration
	sessionTTL    time.Duration
	cookieName    string
	issuer        string
}

func (c testConfig) GetAccessTokenSecret() string      { return c.accessSecret }
func (c testConfig) GetSessionTokenSecret() string     { return c.sessionSecret }
func (c testConfig) GetAccessTokenTTL() time.Duration  { return c.accessTTL }
func (c testConfig) GetSessionTokenTTL() time.Duration { return c.sessionTTL }
func (c testConfig) GetSessionCookieName() string      { return c.cookieName }
func (c testConfig) GetIssuer() string                 { return c.issuer }

func newTestConfig() testConfig {
	return testConfig{
		accessSecret:  "access-secret-for-tests",
		sessionSecret: "session-secret-for-tests",
		accessTTL:     time.Hour * 6,
		sessionTTL:    time.Hour * 120,
		cookieName:    "refresh-token",
		issuer:        "booktracker",
	}
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*testConfig)
		wantErr bool
	}{
		{
			name:    "Valid config",
			mutate:  func(*testConfig) {},
			wantErr: false,
		},
		{
			name:    "Empty access secret",
			mutate:  func(c *testConfig) { c.accessSecret = "" },
			wantErr: true,
		},
		{
			name:    "Empty session secret",
			mutate:  func(c *testConfig) { c.sessionSecret = "" },
			wantErr: true,
		},
		{
			name:    "Shared secret",
			mutate:  func(c *testConfig) { c.sessionSecret = "access-secret-for-tests" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig()
			tt.mutate(&cfg)

			svc, err := booktracker.NewTokenService(cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestSignAndVerifyAccessToken(t *testing.T) {
	svc, err := booktracker.NewTokenService(newTestConfig())
	require.NoError(t, err)

	userID := "b8a6f7a2-14c9-4e3f-9f36-8e4c8b3f2a11"

	raw, err := svc.SignAccessToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := svc.VerifyAccessToken(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.Equal(t, "booktracker", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour*6), claims.Expires(), time.Minute)
}

func TestSignAndVerifySessionToken(t *testing.T) {
	svc, err := booktracker.NewTokenService(newTestConfig())
	require.NoError(t, err)

	userID := "b8a6f7a2-14c9-4e3f-9f36-8e4c8b3f2a11"

	raw, err := svc.SignSessionToken(userID)
	require.NoError(t, err)

	claims, err := svc.VerifySessionToken(raw)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID())
	assert.WithinDuration(t, time.Now().Add(time.Hour*120), claims.Expires(), time.Minute)
}

func TestVerifyAccessTokenFailures(t *testing.T) {
	svc, err := booktracker.NewTokenService(newTestConfig())
	require.NoError(t, err)

	t.Run("Expired token", func(t *testing.T) {
		cfg := newTestConfig()
		cfg.accessTTL = -time.Minute
		expiredSvc, err := booktracker.NewTokenService(cfg)
		require.NoError(t, err)

		raw, err := expiredSvc.SignAccessToken("user-1")
		require.NoError(t, err)

		claims, err := svc.VerifyAccessToken(raw)
		assert.Nil(t, claims)
		assert.True(t, booktracker.IsTokenExpiredError(err))
		assert.False(t, booktracker.IsTokenInvalidError(err))
	})

	t.Run("Session token rejected as access token", func(t *testing.T) {
		raw, err := svc.SignSessionToken("user-1")
		require.NoError(t, err)

		claims, err := svc.VerifyAccessToken(raw)
		assert.Nil(t, claims)
		assert.True(t, booktracker.IsTokenInvalidError(err))
		assert.False(t, booktracker.IsTokenExpiredError(err))
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := newTestConfig()
		other.accessSecret = "a-completely-different-secret"
		otherSvc, err := booktracker.NewTokenService(other)
		require.NoError(t, err)

		raw, err := otherSvc.SignAccessToken("user-1")
		require.NoError(t, err)

		_, err = svc.VerifyAccessToken(raw)
		assert.True(t, booktracker.IsTokenInvalidError(err))
	})

	t.Run("Malformed token", func(t *testing.T) {
		_, err := svc.VerifyAccessToken("not.a.jwt")
		assert.True(t, booktracker.IsTokenInvalidError(err))
	})
}

func TestMintTokenHash(t *testing.T) {
	a := booktracker.MintTokenHash("user-1")
	b := booktracker.MintTokenHash("user-1")

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b, "hashes must be unique per mint")
}
