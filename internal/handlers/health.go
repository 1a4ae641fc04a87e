package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const diagnosticCollectionLimit = 10

// Prober exposes the connection checks used by the diagnostic endpoints.
type Prober interface {
	Available() bool
	Name() string
	Ping(ctx context.Context) error
	CollectionNames(ctx context.Context, limit int) ([]string, error)
}

// DatabaseSettings reports which connection settings were supplied at startup.
type DatabaseSettings struct {
	URLSet  bool
	NameSet bool
}

type MessageResponse struct {
	Message string `json:"message" example:"Todo API is running"`
}

type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// Diagnostics is the body of GET /test.
type Diagnostics struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

type HealthHandler struct {
	baseHandler
	probe    Prober
	settings DatabaseSettings
}

func NewHealthHandler(probe Prober, settings DatabaseSettings, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(logger),
		probe:       probe,
		settings:    settings,
	}
}

// Root godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Todo API is running"})
}

// Hello godoc
// @Summary Hello
// @Tags health
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/hello [get]
func (h *HealthHandler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Hello from the backend API!"})
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Ready godoc
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	if err := h.probe.Ping(ctx); err != nil {
		h.log(c).Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, StatusResponse{Status: "db_not_ready"})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}

// Diagnose godoc
// @Summary Database diagnostics
// @Tags health
// @Produce json
// @Success 200 {object} Diagnostics
// @Router /test [get]
func (h *HealthHandler) Diagnose(c *gin.Context) {
	c.JSON(http.StatusOK, h.diagnose(c.Request.Context()))
}

func (h *HealthHandler) diagnose(ctx context.Context) Diagnostics {
	d := Diagnostics{
		Backend:          "✅ Running",
		Database:         "❌ Not Available",
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if h.probe != nil && h.probe.Available() {
		d.Database = "✅ Available"
		d.ConnectionStatus = "Connected"
		names, err := h.probe.CollectionNames(ctx, diagnosticCollectionLimit)
		if err != nil {
			d.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
		} else {
			d.Collections = names
			d.Database = "✅ Connected & Working"
		}
	} else {
		d.Database = "⚠️  Available but not initialized"
	}

	d.DatabaseURL = setMarker(h.settings.URLSet)
	d.DatabaseName = setMarker(h.settings.NameSet)
	return d
}

func setMarker(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
