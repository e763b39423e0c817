package booktracker

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type VerifyAccountMessage struct {
	Hash string `json:"hash"`
}

func (e VerifyAccountMessage) Type() string { return "user.verify_account" }

// VerifyAccountHandler redeems an activation hash. Each hash works exactly
// once, redeeming it flips the account to activated and burns the hash.
type VerifyAccountHandler struct {
	repo   RepositoryManager
	tokens TokenStore
	logger Logger
}

func NewVerifyAccountHandler(repo RepositoryManager, tokens TokenStore) *VerifyAccountHandler {
	return &VerifyAccountHandler{
		repo:   repo,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *VerifyAccountHandler) WithLogger(logger Logger) *VerifyAccountHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyAccountHandler) Execute(ctx context.Context, event VerifyAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAccountHandler) execute(ctx context.Context, event VerifyAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	userID, err := h.tokens.Get(ctx, ScopeActivation, event.Hash)
	if err != nil {
		if IsTokenNotFoundError(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up activation token")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "activation token holds an invalid user id")
	}

	if err := h.repo.Users().Activate(ctx, id); err != nil {
		if goerrors.IsNotFound(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
	}

	if err := h.tokens.Delete(ctx, ScopeActivation, event.Hash); err != nil {
		h.logger.Error("failed to burn activation token", "hash", event.Hash, "error", err)
	}

	return nil
}

type ResendVerificationMessage struct {
	Email string `json:"email"`
}

func (e ResendVerificationMessage) Type() string { return "user.resend_verification" }

// ResendVerificationHandler reissues the activation email. The new hash
// replaces any outstanding one for the same account.
type ResendVerificationHandler struct {
	repo   RepositoryManager
	tokens TokenStore
	mailer Mailer
	logger Logger
}

func NewResendVerificationHandler(repo RepositoryManager, tokens TokenStore, mailer Mailer) *ResendVerificationHandler {
	return &ResendVerificationHandler{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *ResendVerificationHandler) WithLogger(logger Logger) *ResendVerificationHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByIdentifier(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return goerrors.New("no account registered for that email", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest).
				WithTextCode("ACCOUNT_NOT_FOUND")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification resend")
	}

	if user.Activated {
		return goerrors.New("account is already activated", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("ALREADY_ACTIVATED")
	}

	hash := MintTokenHash(user.ID.String())
	if err := h.tokens.Put(ctx, ScopeActivation, hash, user.ID.String(), ActivationTokenTTL); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store activation token")
	}

	go func() {
		if err := h.mailer.SendAccountVerification(user.Email, hash); err != nil {
			h.logger.Error("failed to send verification email", "email", user.Email, "error", err)
		}
	}()

	return nil
}
