package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/models"
)

const defaultReadingLimit = 100

// CreateSensor handles POST /api/devices/:deviceId/sensors (owner/admin)
func (h *Handler) CreateSensor(c *gin.Context) {
	var req models.CreateSensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	sensor, err := h.svc.CreateSensor(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("deviceId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SensorResponse{Sensor: *sensor})
}

// ListSensors handles GET /api/devices/:deviceId/sensors (any member)
func (h *Handler) ListSensors(c *gin.Context) {
	sensors, err := h.svc.ListSensors(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("deviceId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SensorListResponse{Sensors: sensors})
}

// UpdateSensor handles PATCH /api/sensors/:sensorId (owner/admin)
func (h *Handler) UpdateSensor(c *gin.Context) {
	var req models.UpdateSensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}
	// At least one field must be provided
	if req.IsEnabled == nil && req.Status == nil && req.LocationLabel == nil {
		respondValidationError(c)
		return
	}

	sensor, err := h.svc.UpdateSensor(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("sensorId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SensorResponse{Sensor: *sensor})
}

// ListReadings handles GET /api/sensors/:sensorId/readings (any member
// of the owning site), newest first.
func (h *Handler) ListReadings(c *gin.Context) {
	limit := defaultReadingLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondValidationError(c)
			return
		}
		limit = parsed
	}

	readings, err := h.svc.ListReadings(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("sensorId"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReadingListResponse{Readings: readings})
}
