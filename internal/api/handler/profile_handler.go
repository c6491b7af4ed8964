package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecsetu/portal/internal/api/metrics"
	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
)

// ProfileHandler serves the profile endpoints the session client talks to.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get handles GET /api/profile?id=.
//
// @Summary      Get a user profile
// @Tags         profile
// @Produce      json
// @Param        id   query     string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		metrics.ProfileRequestsTotal.WithLabelValues("get", "invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	user, err := h.service.GetProfile(c.Request().Context(), id)
	metrics.ProfileRequestsTotal.WithLabelValues("get", resultLabel(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/profile.
//
// @Summary      Update a user profile
// @Description  Applies the supplied fields to the profile selected by id.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile fields and id"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		metrics.ProfileRequestsTotal.WithLabelValues("update", "invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.ProfileRequestsTotal.WithLabelValues("update", "invalid").Inc()
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), req.ID, req.patch())
	metrics.ProfileRequestsTotal.WithLabelValues("update", resultLabel(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidRole):
		return "invalid"
	default:
		return "error"
	}
}
