package booktracker

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

type ChangePasswordMessage struct {
	UserID      string `json:"-"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (p ChangePasswordMessage) Type() string { return "user.change_password" }

// ChangePasswordHandler rotates the password for an authenticated user after
// re-verifying the current one.
type ChangePasswordHandler struct {
	repo   RepositoryManager
	mailer Mailer
	logger Logger
}

func NewChangePasswordHandler(repo RepositoryManager, mailer Mailer) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		repo:   repo,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	id, err := uuid.Parse(event.UserID)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid user id")
	}

	user, err := h.repo.Users().GetByIdentifier(ctx, id.String())
	if err != nil {
		if goerrors.IsNotFound(err) {
			return goerrors.New("account not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password change")
	}

	if err := ComparePasswordAndHash(event.OldPassword, user.PasswordHash); err != nil {
		return goerrors.New("invalid old password", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("INVALID_OLD_PASSWORD")
	}

	if event.OldPassword == event.NewPassword {
		return goerrors.New("new password must differ from the current one", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("PASSWORD_REUSED")
	}

	passwordHash, err := HashPassword(event.NewPassword)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := h.repo.Users().ResetPassword(ctx, user.ID, passwordHash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to change password")
	}

	go func() {
		if err := h.mailer.SendPasswordChanged(user.Email); err != nil {
			h.logger.Error("failed to send password changed email", "email", user.Email, "error", err)
		}
	}()

	return nil
}
