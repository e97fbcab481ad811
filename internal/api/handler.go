package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/logs"
	"github.com/fleetglue/server/internal/models"
	"github.com/fleetglue/server/internal/service"
)

// Handler holds the API dependencies and registers all routes.
type Handler struct {
	svc           service.Service
	tokens        *auth.TokenService
	secureCookies bool
}

// NewHandler creates a new API handler.
func NewHandler(svc service.Service, tokens *auth.TokenService, secureCookies bool) *Handler {
	return &Handler{
		svc:           svc,
		tokens:        tokens,
		secureCookies: secureCookies,
	}
}

// SetupRoutes registers all API routes on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")

	// Public
	api.POST("/auth/signup", h.SignUp)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.POST("/devices/auth", h.AuthenticateDevice)

	// Session authenticated
	user := api.Group("", AuthMiddleware(h.tokens))
	user.POST("/sites", h.CreateSite)
	user.GET("/sites", h.ListSites)
	user.DELETE("/sites/:siteId", h.DeleteSite)
	user.PATCH("/sites/:siteId/status", h.UpdateSiteStatus)
	user.POST("/sites/:siteId/members", h.AddSiteMember)
	user.PATCH("/sites/:siteId/members/:userId", h.UpdateSiteMemberRole)
	user.POST("/sites/:siteId/devices", h.RegisterDevice)
	user.GET("/sites/:siteId/devices", h.ListDevices)
	user.PATCH("/devices/:deviceId/status", h.UpdateDeviceStatus)
	user.POST("/devices/:deviceId/sensors", h.CreateSensor)
	user.GET("/devices/:deviceId/sensors", h.ListSensors)
	user.PATCH("/sensors/:sensorId", h.UpdateSensor)
	user.GET("/sensors/:sensorId/readings", h.ListReadings)

	// Device authenticated
	device := api.Group("", DeviceAuthMiddleware(h.tokens))
	device.POST("/readings", h.SubmitReading)
}

// Health is a liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondValidationError reports a malformed request body.
func respondValidationError(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Validation failed"})
}

// respondError translates service errors into HTTP responses. Unexpected
// errors are logged with their cause; the client only sees a generic
// message.
func respondError(c *gin.Context, err error) {
	var rateLimited *service.RateLimitedError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &rateLimited):
		seconds := int(math.Ceil(rateLimited.RetryAfter.Seconds()))
		if seconds < 1 {
			seconds = 1
		}
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many attempts"})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: conflict.Message})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "Forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	default:
		logs.Logger.WithError(err).Error("internal error")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}
