package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddlewareTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.Use(CORS([]string{"http://localhost:5173"}))
	router.Use(CartSession(false))
	router.GET("/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"session_id": GetSessionID(c),
			"request_id": GetRequestID(c),
		})
	})
	return router
}

func TestCartSession_IssuesNewSession(t *testing.T) {
	router := setupMiddlewareTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Header().Get(SessionHeader)
	_, err := uuid.Parse(sessionID)
	assert.NoError(t, err)
	assert.Contains(t, w.Body.String(), sessionID)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCartSession_HeaderWinsOverCookie(t *testing.T) {
	router := setupMiddlewareTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(SessionHeader, "from-header")
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "from-header", w.Header().Get(SessionHeader))
}

func TestCartSession_CookieFallback(t *testing.T) {
	router := setupMiddlewareTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "from-cookie"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "from-cookie", w.Header().Get(SessionHeader))
}

func TestCartSession_ReplacesMalformedSession(t *testing.T) {
	router := setupMiddlewareTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(SessionHeader, strings.Repeat("x", maxSessionIDLength+1))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	_, err := uuid.Parse(w.Header().Get(SessionHeader))
	assert.NoError(t, err)
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	router := setupMiddlewareTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), "upstream-id")
}

func TestCORS(t *testing.T) {
	router := setupMiddlewareTest(t)

	req, _ := http.NewRequest(http.MethodOptions, "/session", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionHeader)

	req, _ = http.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
