package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pairline/matching-system/internal/core/domain"
	"github.com/pairline/matching-system/internal/core/ports"
)

// MatchHandler handles HTTP requests for queue and match operations.
type MatchHandler struct {
	service  ports.MatchingService
	presence ports.PresenceStore
}

func NewMatchHandler(service ports.MatchingService, presence ports.PresenceStore) *MatchHandler {
	return &MatchHandler{service: service, presence: presence}
}

// Join handles POST /v1/queue/join.
//
// @Summary      Join the matchmaking queue
// @Tags         queue
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      joinRequest  true  "Profile and preferences"
// @Success      200   {object}  joinResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/queue/join [post]
func (h *MatchHandler) Join(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req joinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Join(c.Request().Context(), ports.JoinInput{
		UserID: userID,
		Prefs: domain.Preferences{
			Gender: domain.Gender(req.Preferences.Gender),
			Age:    req.Preferences.Age,
			Location: domain.Coordinates{
				Lat: req.Preferences.Location.Lat,
				Lng: req.Preferences.Location.Lng,
			},
			Seeking:       domain.Gender(req.Preferences.Seeking),
			AgeMin:        req.Preferences.AgeMin,
			AgeMax:        req.Preferences.AgeMax,
			MaxDistanceKm: req.Preferences.MaxDistanceKm,
		},
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, joinResponse{
		Status:  result.Status,
		MatchID: result.MatchID,
	})
}

// Leave handles POST /v1/queue/leave. Leaving is idempotent.
//
// @Summary      Leave the matchmaking queue
// @Tags         queue
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  okResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/queue/leave [post]
func (h *MatchHandler) Leave(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Leave(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, okResponse{Status: "left"})
}

// Status handles GET /v1/status.
//
// @Summary      Get current queue or match state
// @Tags         queue
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/status [get]
func (h *MatchHandler) Status(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	result, err := h.service.Status(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusResponse{
		State:               result.State,
		MatchID:             result.MatchID,
		PartnerID:           result.PartnerID,
		FairnessScore:       result.FairnessScore,
		PreferenceStage:     result.PreferenceStage,
		VoteWindowExpiresAt: result.VoteWindowExpiresAt,
	})
}

// Vote handles POST /v1/matches/:match_id/vote.
//
// @Summary      Vote on an active match
// @Tags         matches
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        match_id  path      string       true  "Match identifier"
// @Param        body      body      voteRequest  true  "yes or pass"
// @Success      200       {object}  voteResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Failure      409       {object}  errorResponse
// @Failure      410       {object}  errorResponse
// @Router       /v1/matches/{match_id}/vote [post]
func (h *MatchHandler) Vote(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}
	matchID := c.Param("match_id")

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.SubmitVote(c.Request().Context(), matchID, userID, domain.VoteType(req.Vote))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, voteResponse{Outcome: result.Outcome})
}

// Heartbeat handles POST /v1/heartbeat. Each beat refreshes the caller's
// presence TTL; a user whose TTL lapses is treated as offline on the next
// sweep.
//
// @Summary      Refresh presence
// @Tags         presence
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  okResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/heartbeat [post]
func (h *MatchHandler) Heartbeat(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.presence.Heartbeat(c.Request().Context(), userID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, okResponse{Status: "ok"})
}
