package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecsetu/portal/internal/api/metrics"
	"github.com/ecsetu/portal/internal/core/domain"
	"github.com/ecsetu/portal/internal/core/ports"
)

type UserHandler struct {
	service ports.ProfileService
}

func NewUserHandler(service ports.ProfileService) *UserHandler {
	return &UserHandler{service: service}
}

// Create handles POST /api/users. The new user receives a welcome email with a
// temporary password.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Name:        req.Name,
		Email:       req.Email,
		Role:        domain.Role(req.Role),
		Location:    req.Location,
		Phone:       req.Phone,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.WithLabelValues(res.User.Role.String()).Inc()
	metrics.EmailsTotal.WithLabelValues("welcome", metrics.EmailResult(res.WelcomeEmailSent)).Inc()

	return c.JSON(http.StatusCreated, createUserResponse{
		User:             res.User,
		WelcomeEmailSent: res.WelcomeEmailSent,
	})
}

// Login checks a user's credentials and returns the profile. No token is
// issued.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.service.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
