package booktracker

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// ErrorHandler maps an error to an HTTP response.
type ErrorHandler func(c *fiber.Ctx, err error) error

// RenderError writes a rich error as a JSON response. The status comes from
// the error code, internal failures collapse into a neutral message so
// nothing about the server leaks.
func RenderError(logger Logger, c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = categoryStatus(richErr.Category)
	}

	logger.Info(
		"request error",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	body := fiber.Map{
		"error": richErr.Message,
	}

	if richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	if status >= http.StatusInternalServerError {
		body = fiber.Map{
			"error": "Server error",
		}
	}

	return c.Status(status).JSON(body)
}

// RenderValidationError formats a rich validation failure as a field to
// message map under a 400 status.
func RenderValidationError(c *fiber.Ctx, err *errors.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":      err.Message,
		"validation": err.ValidationMap(),
	})
}

func categoryStatus(category errors.Category) int {
	switch category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return http.StatusUnauthorized
	case errors.CategoryBadInput, errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
