package books

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/booktrackerhq/booktracker"
)

// RegisterBookRoutes mounts the catalog search plus the authenticated
// library endpoints. The guard argument is the session renewal middleware.
func RegisterBookRoutes(app fiber.Router, guard fiber.Handler, controller *BookController) {
	app.Get("/books/search", controller.Search)
	app.Get("/library", guard, controller.LibraryShow)
	app.Post("/library/:bookId", guard, controller.LibraryAdd)
}

type BookController struct {
	Logger   booktracker.Logger
	Repo     booktracker.RepositoryManager
	Searcher Searcher
}

type BookControllerOption func(*BookController) *BookController

func NewBookController(opts ...BookControllerOption) *BookController {
	c := &BookController{}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Logger == nil {
		panic("Missing Logger in book controller...")
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in book controller...")
	}

	if c.Searcher == nil {
		panic("Missing Searcher in book controller...")
	}

	return c
}

func WithControllerLogger(logger booktracker.Logger) BookControllerOption {
	return func(c *BookController) *BookController {
		c.Logger = logger
		return c
	}
}

func WithControllerRepo(repo booktracker.RepositoryManager) BookControllerOption {
	return func(c *BookController) *BookController {
		c.Repo = repo
		return c
	}
}

func WithControllerSearcher(searcher Searcher) BookControllerOption {
	return func(c *BookController) *BookController {
		c.Searcher = searcher
		return c
	}
}

// Search is a public endpoint querying the catalog by term. The optional
// number query parameter caps the result count.
func (a *BookController) Search(ctx *fiber.Ctx) error {
	term := ctx.Query("term")
	if term == "" {
		return booktracker.RenderError(a.Logger, ctx, goerrors.New("missing search term", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest))
	}

	number := ctx.QueryInt("number")

	volumes, err := a.Searcher.Search(ctx.Context(), term, number)
	if err != nil {
		a.Logger.Error("catalog search error: ", "term", term, "error", err)
		return booktracker.RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"books": volumes,
	})
}

// LibraryShow returns the authenticated user's library, creating it lazily
// when the account predates library provisioning.
func (a *BookController) LibraryShow(ctx *fiber.Ctx) error {
	userID, err := a.currentUserID(ctx)
	if err != nil {
		return booktracker.RenderError(a.Logger, ctx, err)
	}

	library, err := a.Repo.Libraries().GetOrCreateByUserID(ctx.Context(), userID)
	if err != nil {
		a.Logger.Error("library show error: ", "user_id", userID.String(), "error", err)
		return booktracker.RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(a.withRenewedToken(ctx, fiber.Map{
		"books": library.Books,
	}))
}

// LibraryAddPayload carries the volume details resolved by the client so we
// avoid a second catalog round trip.
type LibraryAddPayload struct {
	Title    string   `form:"title" json:"title"`
	Authors  []string `json:"authors"`
	Date     string   `form:"date" json:"date"`
	ImageURL string   `form:"image_url" json:"image_url"`
}

func (a *BookController) LibraryAdd(ctx *fiber.Ctx) error {
	userID, err := a.currentUserID(ctx)
	if err != nil {
		return booktracker.RenderError(a.Logger, ctx, err)
	}

	bookID := ctx.Params("bookId")
	if bookID == "" {
		return booktracker.RenderError(a.Logger, ctx, goerrors.New("missing book id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest))
	}

	payload := new(LibraryAddPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return booktracker.RenderError(a.Logger, ctx, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
			WithCode(goerrors.CodeBadRequest))
	}

	book := booktracker.Book{
		GoogleBooksID: bookID,
		Title:         payload.Title,
		Authors:       payload.Authors,
		Date:          payload.Date,
		ImageURL:      payload.ImageURL,
	}

	library, err := a.Repo.Libraries().AddBook(ctx.Context(), userID, book)
	if err != nil {
		a.Logger.Error("library add error: ", "user_id", userID.String(), "book_id", bookID, "error", err)
		return booktracker.RenderError(a.Logger, ctx, err)
	}

	return ctx.JSON(a.withRenewedToken(ctx, fiber.Map{
		"books": library.Books,
	}))
}

func (a *BookController) currentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := booktracker.UserIDFromContext(ctx.UserContext())
	if !ok {
		return uuid.Nil, booktracker.ErrTokenInvalid
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, goerrors.CategoryAuth, "token holds an invalid user id").
			WithCode(goerrors.CodeUnauthorized)
	}

	return id, nil
}

func (a *BookController) withRenewedToken(ctx *fiber.Ctx, body fiber.Map) fiber.Map {
	if token, ok := booktracker.RenewedTokenFromContext(ctx.UserContext()); ok {
		body["accessToken"] = token
	}
	return body
}
