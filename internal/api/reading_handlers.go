package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/models"
)

// SubmitReading handles POST /api/readings. Only the authenticated
// owning device may submit readings for a sensor.
func (h *Handler) SubmitReading(c *gin.Context) {
	var req models.CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	reading, err := h.svc.SubmitReading(c.Request.Context(), c.GetString(contextDeviceIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.ReadingResponse{Reading: *reading})
}
