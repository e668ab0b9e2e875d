package auth

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// HTTPStatusFromError maps a rich error to an HTTP status code. Errors that
// carry an explicit code win; otherwise the category decides.
func HTTPStatusFromError(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	if richErr.Code != 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithError writes the JSON error envelope for an API failure. Server
// side categories get a generic message so internals never reach the client.
func RespondWithError(ctx router.Context, logger Logger, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := HTTPStatusFromError(richErr)

	if logger != nil {
		logger.Info(
			"request error",
			"error", richErr.Message,
			"category", richErr.Category,
			"text_code", richErr.TextCode,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	message := richErr.Message
	if status >= http.StatusInternalServerError {
		message = "An unexpected server error occurred"
	}

	body := map[string]any{
		"error": map[string]any{
			"message":   message,
			"text_code": richErr.TextCode,
		},
	}

	return ctx.JSON(status, body)
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if m, ok := err.(validation.Errors); ok {
		for field, ferr := range m {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
