package booktracker

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetAccessTokenSecret() string
	GetSessionTokenSecret() string
	GetAccessTokenTTL() time.Duration
	GetSessionTokenTTL() time.Duration
	GetSessionCookieName() string
	GetIssuer() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*TokenPair, error)
}

// TokenPair is what a successful login produces. The access token travels in
// the response body, the session token only ever travels in an HTTP-only
// cookie.
type TokenPair struct {
	AccessToken  string
	SessionToken string
}

// CredentialVerifier ensures we have a store to verify identities against
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, identifier, password string) (*User, error)
}

// Mailer sends account lifecycle notifications. Implementations must be safe
// for concurrent use; callers fire and forget.
type Mailer interface {
	IsEnabled() bool
	SendAccountVerification(to, hash string) error
	SendPasswordReset(to, hash string) error
	SendPasswordChanged(to string) error
}

// NewLogger returns the default stdout logger scoped to the given name.
func NewLogger(name string) Logger {
	return namedLogger{name: name}
}

type namedLogger struct {
	name string
}

func (n namedLogger) Error(format string, args ...any) {
	defLogger{}.Error("("+n.name+") "+format, args...)
}

func (n namedLogger) Warn(format string, args ...any) {
	defLogger{}.Warn("("+n.name+") "+format, args...)
}

func (n namedLogger) Info(format string, args ...any) {
	defLogger{}.Info("("+n.name+") "+format, args...)
}

func (n namedLogger) Debug(format string, args ...any) {
	defLogger{}.Debug("("+n.name+") "+format, args...)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] BOOKTRACKER "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] BOOKTRACKER "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] BOOKTRACKER "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] BOOKTRACKER "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
