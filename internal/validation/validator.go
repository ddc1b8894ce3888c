// Package validation wires go-playground/validator into Echo so request
// DTOs can declare their constraints with struct tags.
package validation

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator implements echo.Validator on top of a shared
// validator.Validate instance.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate checks struct tags and converts violations to a 400 response
// so handlers can simply `return c.Validate(&req)` style errors upward.
func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
