package booktracker

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenService signs and verifies the stateless token pair. Access and
// session tokens use two distinct HMAC secrets so one can never stand in for
// the other; verification is three-outcome (claims, expired, invalid) rather
// than boolean.
type TokenService struct {
	accessSecret  []byte
	sessionSecret []byte
	accessTTL     time.Duration
	sessionTTL    time.Duration
	issuer        string
	logger        Logger
}

// NewTokenService creates a new TokenService instance. Secret
// misconfiguration is the only failure mode and is fatal for the caller,
// never a per-request condition.
func NewTokenService(cfg Config) (*TokenService, error) {
	access := cfg.GetAccessTokenSecret()
	session := cfg.GetSessionTokenSecret()

	if access == "" || session == "" {
		return nil, goerrors.New("token secrets are not configured", goerrors.CategoryInternal)
	}

	if access == session {
		return nil, goerrors.New("access and session token secrets must differ", goerrors.CategoryInternal)
	}

	return &TokenService{
		accessSecret:  []byte(access),
		sessionSecret: []byte(session),
		accessTTL:     cfg.GetAccessTokenTTL(),
		sessionTTL:    cfg.GetSessionTokenTTL(),
		issuer:        cfg.GetIssuer(),
		logger:        defLogger{},
	}, nil
}

func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// AccessTokenTTL exposes the configured access token lifetime.
func (ts *TokenService) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}

// SessionTokenTTL exposes the configured session token lifetime, which also
// bounds the session cookie max-age.
func (ts *TokenService) SessionTokenTTL() time.Duration {
	return ts.sessionTTL
}

// SignAccessToken mints a short lived access token for the given user.
func (ts *TokenService) SignAccessToken(userID string) (string, error) {
	return ts.sign(userID, ts.accessSecret, ts.accessTTL)
}

// SignSessionToken mints the long lived session token for the given user.
func (ts *TokenService) SignSessionToken(userID string) (string, error) {
	return ts.sign(userID, ts.sessionSecret, ts.sessionTTL)
}

// VerifyAccessToken validates raw against the access secret.
func (ts *TokenService) VerifyAccessToken(raw string) (*TokenClaims, error) {
	return ts.verify(raw, ts.accessSecret)
}

// VerifySessionToken validates raw against the session secret.
func (ts *TokenService) VerifySessionToken(raw string) (*TokenClaims, error) {
	return ts.verify(raw, ts.sessionSecret)
}

func (ts *TokenService) sign(userID string, secret []byte, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", goerrors.New("user id must not be empty", goerrors.CategoryBadInput)
	}

	now := time.Now()
	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(secret)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (ts *TokenService) verify(raw string, secret []byte) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService verify could not decode claims")
	return nil, ErrTokenInvalid
}
