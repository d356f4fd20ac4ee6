package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveCSRF(allowedOrigins []string, req *http.Request) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(CSRF(allowedOrigins))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCSRF_AllowsSafeMethodsWithoutOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRF_AllowsListedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRF_OriginMatchIsCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "HTTP://LOCALHOST:3000/")
	w := serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCSRF_RejectsUnlistedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRF_RejectsMissingOriginOnMutation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	w := serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCSRF_FallsBackToReferer(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Referer", "http://localhost:3000/login")
	w := serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/ping", nil)
	req.Header.Set("Referer", "https://evil.example/login")
	w = serveCSRF([]string{"http://localhost:3000"}, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
