package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Cart-Session"
	SessionCookie = "cart_session"
	SessionIDKey  = "cart_session_id"

	sessionCookieMaxAge = 60 * 60 * 24 * 30
	maxSessionIDLength  = 128
)

// CartSession resolves the shopper's cart session from the X-Cart-Session
// header, then the cart_session cookie, issuing a new one when neither is
// usable. The ID is echoed back in both so the storefront can keep either.
func CartSession(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
		if sessionID == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				sessionID = strings.TrimSpace(cookie)
			}
		}

		if !validSessionID(sessionID) {
			if sessionID != "" {
				GetLoggerFromContext(c).Warn("Replacing malformed cart session", map[string]interface{}{
					"length": len(sessionID),
				})
			}
			sessionID = uuid.New().String()
			GetLoggerFromContext(c).Debug("Issued cart session", map[string]interface{}{
				"session_id": sessionID,
			})
		}

		c.Set(SessionIDKey, sessionID)
		c.Header(SessionHeader, sessionID)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sessionID, sessionCookieMaxAge, "/", "", secureCookie, true)

		c.Next()
	}
}

// validSessionID accepts short printable tokens; anything else is replaced.
func validSessionID(id string) bool {
	if id == "" || len(id) > maxSessionIDLength {
		return false
	}
	for _, r := range id {
		if r <= ' ' || r > '~' || r == ';' || r == ',' {
			return false
		}
	}
	return true
}

// GetSessionID returns the cart session set by CartSession.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// CORS allows the configured storefront origins and exposes the session
// header to browser code.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, accept, origin, Cache-Control, X-Requested-With, "+SessionHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", SessionHeader+", "+RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
