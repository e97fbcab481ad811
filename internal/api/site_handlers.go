package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/models"
)

// CreateSite handles POST /api/sites. The creating user becomes the
// site's first owner.
func (h *Handler) CreateSite(c *gin.Context) {
	var req models.CreateSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	site, err := h.svc.CreateSite(c.Request.Context(), c.GetString(contextUserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SiteResponse{Site: *site})
}

// ListSites handles GET /api/sites
func (h *Handler) ListSites(c *gin.Context) {
	sites, err := h.svc.ListSites(c.Request.Context(), c.GetString(contextUserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SiteListResponse{Sites: sites})
}

// DeleteSite handles DELETE /api/sites/:siteId (owner only)
func (h *Handler) DeleteSite(c *gin.Context) {
	err := h.svc.DeleteSite(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("siteId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Site deleted"})
}

// UpdateSiteStatus handles PATCH /api/sites/:siteId/status (owner/admin)
func (h *Handler) UpdateSiteStatus(c *gin.Context) {
	var req models.UpdateSiteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	site, err := h.svc.UpdateSiteStatus(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("siteId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SiteResponse{Site: *site})
}

// AddSiteMember handles POST /api/sites/:siteId/members (owner/admin;
// granting the owner role requires an owner)
func (h *Handler) AddSiteMember(c *gin.Context) {
	var req models.AddSiteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	member, err := h.svc.AddSiteMember(c.Request.Context(), c.GetString(contextUserIDKey), c.Param("siteId"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.MemberResponse{Member: *member})
}

// UpdateSiteMemberRole handles PATCH /api/sites/:siteId/members/:userId
func (h *Handler) UpdateSiteMemberRole(c *gin.Context) {
	var req models.UpdateSiteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	member, err := h.svc.UpdateSiteMemberRole(
		c.Request.Context(),
		c.GetString(contextUserIDKey),
		c.Param("siteId"),
		c.Param("userId"),
		req.Role,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MemberResponse{Member: *member})
}
