// Package renewware guards routes with access tokens and transparently
// renews them from the session cookie when they expire.
package renewware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/booktrackerhq/booktracker"
)

var ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")

// TokenVerifier mirrors the token service surface the guard needs.
type TokenVerifier interface {
	VerifyAccessToken(raw string) (*booktracker.TokenClaims, error)
	VerifySessionToken(raw string) (*booktracker.TokenClaims, error)
	SignAccessToken(userID string) (string, error)
}

type Config struct {
	// Filter skips the guard for matching requests
	Filter func(*fiber.Ctx) bool
	// Verifier is required
	Verifier TokenVerifier
	// CookieName holds the session token cookie, defaults to refresh-token
	CookieName string
	// ContextKey is the Locals key the claims are stored under
	ContextKey string
	// AuthScheme defaults to Bearer
	AuthScheme string
	// RenewedTokenKey is the Locals key a freshly minted access token is
	// stored under after a renewal
	RenewedTokenKey string
	ErrorHandler    func(*fiber.Ctx, error) error
}

// New returns the guard middleware. Requests carry a Bearer access token, a
// valid one passes through, an expired one is renewed from the session
// cookie, anything else is rejected with a 401.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)

	return func(ctx *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(ctx) {
			return ctx.Next()
		}

		raw, err := tokenFromHeader(ctx, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(ctx, err)
		}

		claims, err := cfg.Verifier.VerifyAccessToken(raw)
		if err == nil {
			cfg.accept(ctx, claims.UserID(), "")
			return ctx.Next()
		}

		if !booktracker.IsTokenExpiredError(err) {
			return cfg.ErrorHandler(ctx, err)
		}

		return cfg.renew(ctx)
	}
}

// renew consults the session cookie after the access token expired. A live
// session mints a fresh access token that handlers echo back to the client.
func (cfg Config) renew(ctx *fiber.Ctx) error {
	raw := ctx.Cookies(cfg.CookieName)
	if raw == "" {
		return cfg.ErrorHandler(ctx, booktracker.ErrTokenExpired)
	}

	claims, err := cfg.Verifier.VerifySessionToken(raw)
	if err != nil {
		return cfg.ErrorHandler(ctx, err)
	}

	token, err := cfg.Verifier.SignAccessToken(claims.UserID())
	if err != nil {
		return cfg.ErrorHandler(ctx, err)
	}

	cfg.accept(ctx, claims.UserID(), token)
	return ctx.Next()
}

func (cfg Config) accept(ctx *fiber.Ctx, userID, renewedToken string) {
	ctx.Locals(cfg.ContextKey, userID)

	stdCtx := booktracker.WithUserID(ctx.UserContext(), userID)
	if renewedToken != "" {
		ctx.Locals(cfg.RenewedTokenKey, renewedToken)
		stdCtx = booktracker.WithRenewedToken(stdCtx, renewedToken)
	}
	ctx.SetUserContext(stdCtx)
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Verifier == nil {
		panic("AUTH: renew middleware configuration: Verifier is required.")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = "refresh-token"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user_id"
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.RenewedTokenKey == "" {
		cfg.RenewedTokenKey = "renewed_token"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	message := "Invalid authentication token"

	switch {
	case errors.Is(err, ErrJWTMissingOrMalformed):
		message = ErrJWTMissingOrMalformed.Error()
	case booktracker.IsTokenExpiredError(err):
		message = "refresh token has expired"
	}

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
	})
}

// tokenFromHeader extracts the raw token from the Authorization header.
func tokenFromHeader(c *fiber.Ctx, authScheme string) (string, error) {
	a := c.Get(fiber.HeaderAuthorization)
	l := len(authScheme)
	if l == 0 {
		return "", ErrJWTMissingOrMalformed
	}
	authScheme = strings.TrimSpace(authScheme)
	if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
		raw := strings.TrimSpace(a[l:])
		if raw != "" {
			return raw, nil
		}
	}
	return "", ErrJWTMissingOrMalformed
}
