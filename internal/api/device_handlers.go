package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/models"
	"github.com/fleetglue/server/internal/service"
)

// RegisterDevice handles POST /api/sites/:siteId/devices (owner/admin).
// The response carries the plaintext device secret exactly once.
func (h *Handler) RegisterDevice(c *gin.Context) {
	var req models.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	device, secret, err := h.svc.RegisterDevice(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("siteId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.RegisterDeviceResponse{
		Device:       *device,
		DeviceSecret: secret,
	})
}

// ListDevices handles GET /api/sites/:siteId/devices (any member)
func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.svc.ListDevices(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("siteId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DeviceListResponse{Devices: devices})
}

// UpdateDeviceStatus handles PATCH /api/devices/:deviceId/status
// (owner/admin of the owning site)
func (h *Handler) UpdateDeviceStatus(c *gin.Context) {
	var req models.UpdateDeviceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	device, err := h.svc.UpdateDeviceStatus(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("deviceId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DeviceResponse{Device: *device})
}

// AuthenticateDevice handles POST /api/devices/auth. Public, rate
// limited per (origin, serial). Unknown serial and wrong secret return
// the identical response.
func (h *Handler) AuthenticateDevice(c *gin.Context) {
	var req models.DeviceAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	token, err := h.svc.AuthenticateDevice(c.Request.Context(), c.ClientIP(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DeviceAuthResponse{
		DeviceToken:      token,
		ExpiresInSeconds: int(auth.DeviceTokenTTL.Seconds()),
	})
}
