package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoPinger is satisfied by *mongo.Client.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// MailerStatus reports whether outgoing mail is configured.
type MailerStatus interface {
	Enabled() bool
}

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready, the readiness probe.
// MongoDB must answer a ping. A mailer without credentials is reported but
// does not fail the probe.
type ReadinessHandler struct {
	mongo  MongoPinger
	mailer MailerStatus
}

func NewReadinessHandler(mongo MongoPinger, mailer MailerStatus) *ReadinessHandler {
	return &ReadinessHandler{mongo: mongo, mailer: mailer}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- MongoDB ping ---
	if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
		deps["mongodb"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["mongodb"] = dependencyStatus{Status: "ok"}
	}

	// --- SMTP credentials ---
	if h.mailer.Enabled() {
		deps["smtp"] = dependencyStatus{Status: "ok"}
	} else {
		deps["smtp"] = dependencyStatus{Status: "disabled"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
