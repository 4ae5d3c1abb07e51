package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRemainingAfterClampsAtZero(t *testing.T) {
	assert.Equal(t, 9, remainingAfter(10, 1))
	assert.Equal(t, 0, remainingAfter(10, 10))
	assert.Equal(t, 0, remainingAfter(10, 17))
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimit(nil, 1, 0, KeyByIP(), nil), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestKeyByUserIDFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	key := KeyByUserID()(c)
	assert.Contains(t, key, "rl:user:anon:ip:")

	c.Set(CtxUserIDKey, "u-123")
	assert.Equal(t, "rl:user:u-123", KeyByUserID()(c))
}
