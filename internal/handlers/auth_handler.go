package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexmeet/backend/internal/dtos"
	"github.com/nexmeet/backend/internal/middlewares"
	"github.com/nexmeet/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService

	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	cookieSecure    bool
}

func NewAuthHandler(authService *services.AuthService, accessTTL, refreshTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		cookieSecure:    cookieSecure,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dtos.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, resp)
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dtos.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, resp)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie("refreshToken")
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token required"})
		return
	}

	resp, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, resp)
	c.JSON(http.StatusOK, resp)
}

// setAuthCookies mirrors the tokens into HttpOnly cookies for browser
// clients; the JSON body carries them for everyone else.
func (h *AuthHandler) setAuthCookies(c *gin.Context, resp *dtos.AuthResponse) {
	c.SetCookie(middlewares.AccessTokenCookie, resp.AccessToken, int(h.accessTokenTTL.Seconds()), "/", "", h.cookieSecure, true)
	c.SetCookie("refreshToken", resp.RefreshToken, int(h.refreshTokenTTL.Seconds()), "/", "", h.cookieSecure, true)
}
