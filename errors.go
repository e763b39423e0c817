package booktracker

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so callers can branch on token outcomes
// without matching message strings.
const (
	TextCodeTokenExpired   = "TOKEN_EXPIRED"
	TextCodeTokenInvalid   = "TOKEN_INVALID"
	TextCodeTokenNotFound  = "TOKEN_NOT_FOUND"
	TextCodeNotActivated   = "ACCOUNT_NOT_ACTIVATED"
	TextCodeBadCredentials = "INVALID_CREDENTIALS"
)

// ErrTokenExpired marks a structurally valid token whose expiry has passed.
// Recoverable: the renewal guard reacts to it by consulting the session token.
var ErrTokenExpired = goerrors.New("token has expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenInvalid marks a malformed token, a bad signature, or a token signed
// with the wrong secret. Terminal: no renewal is attempted.
var ErrTokenInvalid = goerrors.New("token is invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeTokenInvalid)

// ErrTokenNotFound is returned by the ephemeral token store for hashes that
// are absent, which covers both expired and never-issued, indistinguishable
// by design.
var ErrTokenNotFound = goerrors.New("token not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeTokenNotFound)

// ErrInvalidCredentials is the single generic failure for unknown identifier
// and wrong password alike, so response shape never leaks which one it was.
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode(TextCodeBadCredentials)

// ErrAccountNotActivated rejects logins for accounts that never redeemed
// their activation link.
var ErrAccountNotActivated = goerrors.New("account has not been activated", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode(TextCodeNotActivated)

// ErrNoEmptyString rejects empty passwords before they reach bcrypt.
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryBadInput)

// ErrMismatchedHashAndPassword is the typed mismatch result of password
// verification. Callers treat it as data, not as a failure to verify.
var ErrMismatchedHashAndPassword = goerrors.New("crypto: hash and password mismatch", goerrors.CategoryAuth)

// IsTokenExpiredError reports whether err carries the expired token tag.
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenInvalidError reports whether err carries the invalid token tag.
func IsTokenInvalidError(err error) bool {
	return hasTextCode(err, TextCodeTokenInvalid)
}

// IsTokenNotFoundError reports whether err marks an absent store token.
func IsTokenNotFoundError(err error) bool {
	return hasTextCode(err, TextCodeTokenNotFound)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}
