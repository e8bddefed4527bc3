package handler

import (
	"errors"
	"net/http"
	"time"

	"kollektivet/internal/middleware"
	"kollektivet/internal/oauth"
	"kollektivet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const oauthStateCookie = "oauth_state"

type AuthHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	GoogleRedirect(c *gin.Context)
	GoogleCallback(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	signInPage  string
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, signInPage string, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, signInPage: signInPage, log: log}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		h.log.Errorf("Failed to register user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"id":      user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	tokenString, expirationTime, err := h.authService.LoginWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.Errorf("Failed to login user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
		return
	}

	h.setSessionCookie(c, tokenString, expirationTime)
	c.JSON(http.StatusOK, gin.H{
		"message":    "Login successful",
		"token":      tokenString,
		"expires_at": expirationTime,
	})
}

// Logout clears the session cookie. Tokens are stateless, so there is nothing
// to invalidate server-side; the token simply ages out.
func (h *authHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *authHandler) GoogleRedirect(c *gin.Context) {
	state, err := oauth.NewState()
	if err != nil {
		h.log.Errorf("Failed to generate oauth state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sign-in"})
		return
	}

	authURL, err := h.authService.GoogleAuthURL(state)
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google sign-in is not configured"})
			return
		}
		h.log.Errorf("Failed to build google auth url: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start sign-in"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, authURL)
}

func (h *authHandler) GoogleCallback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		h.log.Warnf("Google sign-in denied: %s", errParam)
		c.Redirect(http.StatusFound, h.signInPage+"?error=oauth")
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	storedState, err := c.Cookie(oauthStateCookie)
	if code == "" || state == "" || err != nil || state != storedState {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid oauth state"})
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	tokenString, expirationTime, err := h.authService.LoginWithGoogle(c.Request.Context(), code)
	if err != nil {
		h.log.Errorf("Google sign-in failed: %v", err)
		c.Redirect(http.StatusFound, h.signInPage+"?error=oauth")
		return
	}

	h.setSessionCookie(c, tokenString, expirationTime)
	c.Redirect(http.StatusFound, "/")
}

func (h *authHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", false, true)
}
