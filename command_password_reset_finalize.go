package booktracker

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type FinalizePasswordResetMessage struct {
	Hash     string `json:"hash"`
	Password string `json:"password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

// FinalizePasswordResetHandler redeems a reset hash and installs the new
// password. The hash is single use and the account is logged out everywhere
// by flipping logged_in off.
type FinalizePasswordResetHandler struct {
	repo   RepositoryManager
	tokens TokenStore
	mailer Mailer
	logger Logger
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, tokens TokenStore, mailer Mailer) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	userID, err := h.tokens.Get(ctx, ScopeReset, event.Hash)
	if err != nil {
		if IsTokenNotFoundError(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "reset token holds an invalid user id")
	}

	user, err := h.repo.Users().GetByIdentifier(ctx, id.String())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrTokenNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	// Reusing the current password is rejected so a leaked reset link can
	// not be used as a no-op probe.
	if err := ComparePasswordAndHash(event.Password, user.PasswordHash); err == nil {
		return goerrors.New("new password must differ from the current one", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("PASSWORD_REUSED")
	}

	passwordHash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := h.repo.Users().ResetPassword(ctx, user.ID, passwordHash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
	}

	if err := h.tokens.Delete(ctx, ScopeReset, event.Hash); err != nil {
		h.logger.Error("failed to burn reset token", "hash", event.Hash, "error", err)
	}

	go func() {
		if err := h.mailer.SendPasswordChanged(user.Email); err != nil {
			h.logger.Error("failed to send password changed email", "email", user.Email, "error", err)
		}
	}()

	return nil
}
