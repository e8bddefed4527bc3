package middleware

import (
	"errors"
	"net/http"
	"strings"

	"kollektivet/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "kollektivet_session"

// AuthMiddleware creates a Gin middleware validating the session token from
// the session cookie (or an Authorization: Bearer header). Browser
// navigations are redirected to the sign-in page instead of getting a 401.
func AuthMiddleware(secret []byte, signInPage string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			reject(c, signInPage, "Authorization required")
			return
		}

		claims := &models.Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			// Ensure the token's signing method is what we expect
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})

		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				reject(c, signInPage, "Token expired")
				return
			}
			logger.Debug("Invalid JWT token", zap.Error(err))
			reject(c, signInPage, "Invalid token")
			return
		}

		if !token.Valid {
			reject(c, signInPage, "Invalid token")
			return
		}

		// Set user claims in context
		c.Set("claims", claims)
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

func reject(c *gin.Context, signInPage, message string) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, signInPage)
		c.Abort()
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
