package middleware

import (
	"github.com/labstack/echo/v4"
)

// NumericParam answers 404 unless the named path parameter is made of digits
// only, so "/contacts/abc" never reaches an id handler.
func NumericParam(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !isDigits(c.Param(name)) {
				return echo.ErrNotFound
			}
			return next(c)
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
