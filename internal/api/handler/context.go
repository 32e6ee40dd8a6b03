package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxToken extracts the raw bearer token stashed by the Auth middleware. Its
// absence means the middleware did not run on this route — fail closed.
func ctxToken(c echo.Context) (string, error) {
	token, _ := c.Get("token").(string)
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return token, nil
}
