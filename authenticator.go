package booktracker

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// LoginTracker flips the logged_in flag as sessions open and close
type LoginTracker interface {
	SetLoggedIn(ctx context.Context, id uuid.UUID, loggedIn bool) error
}

type Auther struct {
	verifier CredentialVerifier
	tokens   *TokenService
	tracker  LoginTracker
	logger   Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(verifier CredentialVerifier, tokens *TokenService) *Auther {
	return &Auther{
		verifier: verifier,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithLoginTracker records login state transitions on successful logins.
func (s *Auther) WithLoginTracker(tracker LoginTracker) *Auther {
	s.tracker = tracker
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokens
}

// Login verifies the credentials and mints the access plus session token
// pair. The identifier can be an email address or a username.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	user, err := s.verifier.VerifyCredentials(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify credentials error", "error", err)
		return nil, err
	}

	access, err := s.tokens.SignAccessToken(user.ID.String())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign access token")
	}

	session, err := s.tokens.SignSessionToken(user.ID.String())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to sign session token")
	}

	if s.tracker != nil {
		if err := s.tracker.SetLoggedIn(ctx, user.ID, true); err != nil {
			s.logger.Error("Login failed to track logged in state", "error", err)
		}
	}

	return &TokenPair{
		AccessToken:  access,
		SessionToken: session,
	}, nil
}

var _ Authenticator = (*Auther)(nil)
