package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxUserID extracts the user id injected by the Auth middleware and
// fast-fails before any service call: a missing or empty claim means the
// token verified but is operationally unusable, so reject with 401.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}
	return userID, nil
}
