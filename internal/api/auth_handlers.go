package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/models"
)

// SignUp handles POST /api/auth/signup
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.UserResponse{User: *user})
}

// Login handles POST /api/auth/login. On success the session token is
// delivered as an HTTP-only cookie.
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c)
		return
	}

	token, _, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(auth.UserTokenTTL.Seconds()), "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Login successful"})
}

// Logout handles POST /api/auth/logout. The cookie is cleared with
// Max-Age=0 regardless of prior authentication state.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out"})
}
