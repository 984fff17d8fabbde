package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pairline/matching-system/internal/core/domain"
)

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
	}{
		{domain.ErrAlreadyQueued, http.StatusConflict},
		{domain.ErrAlreadyMatched, http.StatusConflict},
		{domain.ErrIneligible, http.StatusUnprocessableEntity},
		{domain.ErrMatchNotFound, http.StatusNotFound},
		{domain.ErrAlreadyVoted, http.StatusConflict},
		{domain.ErrVoteWindowExpired, http.StatusGone},
		{echo.NewHTTPError(http.StatusBadRequest, "bad"), http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler(tt.err, c)

		if rec.Code != tt.wantCode {
			t.Fatalf("%v mapped to %d, want %d", tt.err, rec.Code, tt.wantCode)
		}
	}
}

func TestHTTPErrorHandler_WrappedDomainError(t *testing.T) {
	handler := NewHTTPErrorHandler(zerolog.Nop())
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/queue/join", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	wrapped := errors.Join(errors.New("cooldown active"), domain.ErrIneligible)
	handler(wrapped, c)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("wrapped domain error not unwrapped: %d", rec.Code)
	}
}
