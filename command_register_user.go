package booktracker

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates the account in a deactivated state, provisions
// the user's library, and kicks off email verification.
type RegisterUserHandler struct {
	repo   RepositoryManager
	tokens TokenStore
	mailer Mailer
	logger Logger
}

func NewRegisterUserHandler(repo RepositoryManager, tokens TokenStore, mailer Mailer) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:   repo,
		tokens: tokens,
		mailer: mailer,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := h.ensureAvailable(ctx, event); err != nil {
		return err
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Username = getUsername(event.Username, event.Email)
		user.Activated = false
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	// The library is provisioned outside the user transaction. If it fails
	// the account still exists and the library gets created lazily on first
	// read.
	if _, err := h.repo.Libraries().GetOrCreateByUserID(ctx, user.ID); err != nil {
		h.logger.Error("failed to provision library for new user", "user_id", user.ID.String(), "error", err)
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

// ensureAvailable pre-checks uniqueness so callers get a descriptive error
// instead of a bare constraint violation. Duplicates render as plain 400s.
func (h *RegisterUserHandler) ensureAvailable(ctx context.Context, event RegisterUserMessage) error {
	if _, err := h.repo.Users().GetByIdentifier(ctx, event.Email); err == nil {
		return goerrors.New("email is already registered", goerrors.CategoryConflict).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("EMAIL_TAKEN")
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email availability")
	}

	username := getUsername(event.Username, event.Email)
	if _, err := h.repo.Users().GetByIdentifier(ctx, username); err == nil {
		return goerrors.New("username is already taken", goerrors.CategoryConflict).
			WithCode(goerrors.CodeBadRequest).
			WithTextCode("USERNAME_TAKEN")
	} else if !goerrors.IsNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username availability")
	}

	return nil
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
