package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/suivipro/platform/internal/core/domain"
)

// trimmer is implemented by requests whose identity fields are stored
// trimmed. Trimming runs before validation so " bob " passes the username rule.
type trimmer interface {
	trim()
}

// bindAndValidate decodes the request body into req and runs the struct
// validator. Malformed JSON is a 400 bad_request; rule violations are a
// *domain.ValidationError.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if t, ok := req.(trimmer); ok {
		t.trim()
	}
	return c.Validate(req)
}
