package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/GriffinCanCode/rubico-playground/internal/shared/id"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name            string
		origins         []string
		method          string
		origin          string
		wantStatus      int
		wantAllowOrigin string
	}{
		{
			name:            "wildcard GET",
			origins:         []string{"*"},
			method:          "GET",
			origin:          "http://localhost:3000",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "*",
		},
		{
			name:            "wildcard preflight",
			origins:         []string{"*"},
			method:          "OPTIONS",
			origin:          "http://localhost:3000",
			wantStatus:      http.StatusNoContent,
			wantAllowOrigin: "*",
		},
		{
			name:            "listed origin",
			origins:         []string{"http://docs.local"},
			method:          "GET",
			origin:          "http://docs.local",
			wantStatus:      http.StatusOK,
			wantAllowOrigin: "http://docs.local",
		},
		{
			name:       "unlisted origin",
			origins:    []string{"http://docs.local"},
			method:     "GET",
			origin:     "http://evil.local",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no origin header",
			origins:    []string{"*"},
			method:     "GET",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.Use(CORS(CORSFromOrigins(tt.origins)))
			router.GET("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
				req.Header.Set("Access-Control-Request-Method", "GET")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantAllowOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSFromOrigins(t *testing.T) {
	assert.False(t, CORSFromOrigins([]string{"*"}).AllowCredentials)
	assert.True(t, CORSFromOrigins([]string{"http://docs.local"}).AllowCredentials)
	assert.Equal(t, []string{"*"}, CORSFromOrigins(nil).AllowOrigins)
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per client")
}

func TestRateLimitEvictsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	set := newLimiterSet(RateLimitConfig{RequestsPerSecond: 1, Burst: 1, ClientTTL: time.Minute})
	set.now = func() time.Time { return now }

	assert.True(t, set.allow("a"))
	assert.True(t, set.allow("b"))
	assert.Equal(t, 2, set.size())

	now = now.Add(30 * time.Second)
	assert.True(t, set.allow("a"))

	now = now.Add(45 * time.Second)
	assert.True(t, set.allow("a"))
	assert.Equal(t, 1, set.size(), "b was idle past the ttl")
}

func TestGlobalRateLimit(t *testing.T) {
	router := setupTestRouter()
	router.Use(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest("GET", "/test", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

		rid := w.Header().Get(RequestIDHeader)
		assert.True(t, id.IsValid(rid))
		assert.Equal(t, rid, w.Body.String())
	})

	t.Run("kept when valid", func(t *testing.T) {
		sent := id.NewRequestID().String()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, sent)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, sent, w.Header().Get(RequestIDHeader))
	})

	t.Run("replaced when invalid", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "not-an-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, "not-an-id", w.Header().Get(RequestIDHeader))
	})
}
