package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pairline/matching-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors map to deterministic HTTP codes. Pair-creation
	// conflicts never reach here: the coordinator retries them internally
	// and the caller just sees "queued".
	switch {
	case errors.Is(err, domain.ErrAlreadyQueued):
		return http.StatusConflict, "already queued"
	case errors.Is(err, domain.ErrAlreadyMatched):
		return http.StatusConflict, "already in an active match"
	case errors.Is(err, domain.ErrIneligible):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrMatchNotFound):
		return http.StatusNotFound, "no active match"
	case errors.Is(err, domain.ErrAlreadyVoted):
		return http.StatusConflict, "vote already recorded"
	case errors.Is(err, domain.ErrVoteWindowExpired):
		return http.StatusGone, "vote window has expired"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
