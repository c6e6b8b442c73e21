package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/socialquest/utils"
)

func init() { gin.SetMode(gin.TestMode) }

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired("secret"), func(c *gin.Context) {
		utils.Success(c, gin.H{"player": PlayerID(c)})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	valid, err := utils.GenerateToken("secret", "p-42", time.Hour)
	require.NoError(t, err)
	forged, err := utils.GenerateToken("other", "p-42", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, `"code":40101`},
		{"not bearer", "Basic abc", http.StatusUnauthorized, `"code":40102`},
		{"empty token", "Bearer  ", http.StatusUnauthorized, `"code":40103`},
		{"bad signature", "Bearer " + forged, http.StatusUnauthorized, `"code":40105`},
		{"ok", "bearer " + valid, http.StatusOK, `"player":"p-42"`},
	}
	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.code)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(4))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// burst is half the per-minute budget
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))
}

func TestLimiterSetEvictsIdle(t *testing.T) {
	s := &limiterSet{limit: 1, burst: 1, limiters: map[string]*rateLimiter{}}
	now := time.Now()
	assert.True(t, s.allow("a", now))
	s.allow("b", now.Add(limiterIdle+time.Second))
	assert.NotContains(t, s.limiters, "a")
	assert.Contains(t, s.limiters, "b")
}
