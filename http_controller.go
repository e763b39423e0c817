package booktracker

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// RegisterAuthRoutes mounts the account endpoints on the given router.
func RegisterAuthRoutes(app fiber.Router, controller *AuthController) {
	app.Post("/auth/register", controller.Register)
	app.Post("/auth/resend-verification", controller.ResendVerification)
	app.Get("/auth/verify/:hash", controller.Verify)
	app.Post("/auth/login", controller.Login)
	app.Post("/auth/logout", controller.Logout)
	app.Post("/auth/forgot-password", controller.ForgotPassword)
	app.Post("/auth/reset-password/:hash", controller.ResetPassword)
}

// RegisterUserRoutes mounts the authenticated account endpoints. The guard
// argument is the session renewal middleware.
func RegisterUserRoutes(app fiber.Router, guard fiber.Handler, controller *AuthController) {
	app.Get("/user", guard, controller.Me)
	app.Post("/user/change-password", guard, controller.ChangePassword)
}

type AuthController struct {
	Debug bool
	// DeterministicIDs derives new account ids from the email address so
	// re-registrations across environments land on the same id.
	DeterministicIDs bool
	Logger           Logger
	Repo             RepositoryManager
	Tokens           TokenStore
	Auther           Authenticator
	Mailer           Mailer
	Config           Config
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenStore in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerTokens(tokens TokenStore) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = mailer
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

var passwordDigitRx = regexp.MustCompile(`[0-9]`)
var passwordSpecialRx = regexp.MustCompile(`[!@#$%^&*]`)
var passwordCharsetRx = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*]{6,16}$`)

// ValidatePasswordComplexity enforces the password policy: 6 to 16
// characters from the allowed set, including at least one digit and one
// special character.
func ValidatePasswordComplexity(value any) error {
	s, _ := value.(string)
	if !passwordCharsetRx.MatchString(s) {
		return fmt.Errorf("must be 6 to 16 characters using letters, digits, and !@#$%%^&*")
	}
	if !passwordDigitRx.MatchString(s) {
		return fmt.Errorf("must contain at least one digit")
	}
	if !passwordSpecialRx.MatchString(s) {
		return fmt.Errorf("must contain at least one special character")
	}
	return nil
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Username, validation.Required, validation.Length(6, 32)),
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required, validation.By(ValidatePasswordComplexity)),
		)
	}, "Invalid registration payload")
}

func (a *AuthController) Register(ctx *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return RenderValidationError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	req := RegisterUserMessage{
		Username:  payload.Username,
		Email:     payload.Email,
		Password:  payload.Password,
		UseHashid: a.DeterministicIDs,
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Tokens, a.Mailer).WithLogger(a.Logger)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Check your email to activate your account",
	})
}

// ResendVerificationPayload is the resend body
type ResendVerificationPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ResendVerificationPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid verification resend payload")
}

func (a *AuthController) ResendVerification(ctx *fiber.Ctx) error {
	payload := new(ResendVerificationPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	resend := NewResendVerificationHandler(a.Repo, a.Tokens, a.Mailer).WithLogger(a.Logger)
	if err := resend.Execute(ctx.Context(), ResendVerificationMessage{Email: payload.Email}); err != nil {
		a.Logger.Error("resend verification error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Check your email to activate your account",
	})
}

func (a *AuthController) Verify(ctx *fiber.Ctx) error {
	hash := ctx.Params("hash")

	verify := NewVerifyAccountHandler(a.Repo, a.Tokens).WithLogger(a.Logger)
	if err := verify.Execute(ctx.Context(), VerifyAccountMessage{Hash: hash}); err != nil {
		a.Logger.Error("account verification error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Account activated, you can now log in",
	})
}

// LoginPayload is the login body, the identifier accepts either the email
// address or the username. Clients can also send the email or username
// under their own keys.
type LoginPayload struct {
	Identifier string `form:"identifier" json:"identifier"`
	Email      string `form:"email" json:"email"`
	Username   string `form:"username" json:"username"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Identifier, validation.Required),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login payload")
}

func (r *LoginPayload) normalize() {
	if r.Identifier != "" {
		return
	}
	if r.Email != "" {
		r.Identifier = r.Email
		return
	}
	r.Identifier = r.Username
}

func (a *AuthController) Login(ctx *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	payload.normalize()

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		a.Logger.Error("login error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	a.setSessionCookie(ctx, pair.SessionToken)

	return ctx.JSON(fiber.Map{
		"token": pair.AccessToken,
	})
}

func (a *AuthController) Logout(ctx *fiber.Ctx) error {
	a.clearSessionCookie(ctx)
	return ctx.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// ForgotPasswordPayload is the reset initialization body
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid password reset payload")
}

func (a *AuthController) ForgotPassword(ctx *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	initReset := NewInitializePasswordResetHandler(a.Repo, a.Tokens, a.Mailer).WithLogger(a.Logger)
	if err := initReset.Execute(ctx.Context(), InitializePasswordResetMessage{Email: payload.Email}); err != nil {
		a.Logger.Error("password reset init error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	// The response stays identical whether the email exists or not.
	return ctx.JSON(fiber.Map{
		"message": "If that email is registered you will receive a reset link",
	})
}

// ResetPasswordPayload is the reset finalization body
type ResetPasswordPayload struct {
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Password, validation.Required, validation.By(ValidatePasswordComplexity)),
		)
	}, "Invalid password reset payload")
}

func (a *AuthController) ResetPassword(ctx *fiber.Ctx) error {
	hash := ctx.Params("hash")
	payload := new(ResetPasswordPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	finalize := NewFinalizePasswordResetHandler(a.Repo, a.Tokens, a.Mailer).WithLogger(a.Logger)
	if err := finalize.Execute(ctx.Context(), FinalizePasswordResetMessage{
		Hash:     hash,
		Password: payload.Password,
	}); err != nil {
		a.Logger.Error("password reset finalize error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"message": "Password updated, you can now log in",
	})
}

// Me returns the authenticated user's profile.
func (a *AuthController) Me(ctx *fiber.Ctx) error {
	userID, ok := UserIDFromContext(ctx.UserContext())
	if !ok {
		return RenderError(a.Logger, ctx, ErrTokenInvalid)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), userID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return RenderError(a.Logger, ctx, goerrors.New("account not found", goerrors.CategoryNotFound).
				WithCode(goerrors.CodeNotFound))
		}
		return RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(a.withRenewedToken(ctx, fiber.Map{
		"user": user,
	}))
}

// ChangePasswordPayload is the password rotation body
type ChangePasswordPayload struct {
	OldPassword string `form:"old_password" json:"old_password"`
	NewPassword string `form:"new_password" json:"new_password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.OldPassword, validation.Required),
			validation.Field(&r.NewPassword, validation.Required, validation.By(ValidatePasswordComplexity)),
		)
	}, "Invalid password change payload")
}

func (a *AuthController) ChangePassword(ctx *fiber.Ctx) error {
	userID, ok := UserIDFromContext(ctx.UserContext())
	if !ok {
		return RenderError(a.Logger, ctx, ErrTokenInvalid)
	}

	payload := new(ChangePasswordPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	change := NewChangePasswordHandler(a.Repo, a.Mailer).WithLogger(a.Logger)
	if err := change.Execute(ctx.Context(), ChangePasswordMessage{
		UserID:      userID,
		OldPassword: payload.OldPassword,
		NewPassword: payload.NewPassword,
	}); err != nil {
		a.Logger.Error("password change error: ", "error", err)
		return RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(a.withRenewedToken(ctx, fiber.Map{
		"message": "Password updated",
	}))
}

// withRenewedToken echoes an access token minted during session renewal so
// clients can swap their expired one.
func (a *AuthController) withRenewedToken(ctx *fiber.Ctx, body fiber.Map) fiber.Map {
	if token, ok := RenewedTokenFromContext(ctx.UserContext()); ok {
		body["accessToken"] = token
	}
	return body
}

func (a *AuthController) setSessionCookie(ctx *fiber.Ctx, token string) {
	ctx.Cookie(&fiber.Cookie{
		Name:     a.Config.GetSessionCookieName(),
		Value:    token,
		Expires:  time.Now().Add(a.Config.GetSessionTokenTTL()),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func (a *AuthController) clearSessionCookie(ctx *fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     a.Config.GetSessionCookieName(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}
