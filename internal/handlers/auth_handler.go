package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/middlewares"
	"training_tracker/internal/responses"
	"training_tracker/internal/services"
)

type AuthHandler struct {
	authService   *services.AuthService
	secureCookies bool
}

func NewAuthHandler(authService *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

func (h *AuthHandler) setSession(c *gin.Context, sess *services.Session) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, sess.Token, maxAge, "/", "", h.secureCookies, true)
}

// AdminLogin handles POST /api/v1/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req services.AdminLoginRequest
	if !bind(c, &req) {
		return
	}
	sess, err := h.authService.AdminLogin(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to login")
		return
	}
	h.setSession(c, sess)
	responses.Success(c, http.StatusOK, sess, "Logged in")
}

// EmployeeLogin handles POST /api/v1/auth/employee/login
func (h *AuthHandler) EmployeeLogin(c *gin.Context) {
	var req services.EmployeeLoginRequest
	if !bind(c, &req) {
		return
	}
	sess, err := h.authService.EmployeeLogin(c.Request.Context(), req)
	if err != nil {
		responses.Error(c, err, "Failed to login")
		return
	}
	h.setSession(c, sess)
	responses.Success(c, http.StatusOK, sess, "Logged in")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookieName, "", -1, "/", "", h.secureCookies, true)
	responses.Success(c, http.StatusOK, nil, "Logged out")
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Not signed in")
		return
	}
	responses.Success(c, http.StatusOK, sess, "Session retrieved successfully")
}
