package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"coursecatalog/internal/middleware"
	"coursecatalog/internal/models"
	"coursecatalog/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler interface {
	Signup(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Check(c *gin.Context)
}

// CookieOptions controls how the session cookie is written.
type CookieOptions struct {
	Name        string
	MaxAge      time.Duration
	Secure      bool
	TokenInBody bool
}

type authHandler struct {
	authService service.AuthService
	cookie      CookieOptions
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, cookie CookieOptions, logger *zap.Logger) AuthHandler {
	return &authHandler{authService: authService, cookie: cookie, logger: logger}
}

func (h *authHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Debug("Failed to bind JSON for signup", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, token, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password required"})
		case errors.Is(err, service.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		case errors.Is(err, service.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at most 72 bytes"})
		default:
			h.logger.Error("Failed to sign up user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	h.respondWithSession(c, user, token)
}

func (h *authHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		h.logger.Debug("Failed to bind JSON for login", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provide email or username and password"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		default:
			h.logger.Error("Failed to login user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	h.respondWithSession(c, user, token)
}

// Logout clears the session cookie. Bearer tokens already handed out stay
// valid until they expire.
func (h *authHandler) Logout(c *gin.Context) {
	h.authService.Logout(middleware.ExtractToken(c, h.cookie.Name))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Check handles GET /api/auth/check behind AuthMiddleware.
func (h *authHandler) Check(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": claims})
}

func (h *authHandler) respondWithSession(c *gin.Context, user *models.PublicUser, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, int(h.cookie.MaxAge/time.Second), "/", "", h.cookie.Secure, true)

	resp := models.AuthResponse{User: user}
	if h.cookie.TokenInBody {
		resp.Token = token
	}
	c.JSON(http.StatusOK, resp)
}

// bindJSON treats an empty body as an empty object so missing fields are
// reported as validation errors rather than malformed JSON.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
