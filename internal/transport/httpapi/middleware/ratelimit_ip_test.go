package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func ipRouter(limit, burst int, ttl time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimitPerIP(limit, burst, 100, ttl))
	r.GET("/", func(c *gin.Context) { c.String(200, "ok") })
	return r
}

func ipGet(r *gin.Engine, addr string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = addr
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitPerIP_Basic(t *testing.T) {
	r := ipRouter(1, 1, time.Hour)

	require.Equal(t, 200, ipGet(r, "1.2.3.4:12345"))
	require.Equal(t, 429, ipGet(r, "1.2.3.4:12345"))
}

func TestRateLimitPerIP_DifferentHosts(t *testing.T) {
	r := ipRouter(1, 1, time.Hour)

	require.Equal(t, 200, ipGet(r, "10.0.0.1:1111"))
	require.Equal(t, 200, ipGet(r, "10.0.0.2:2222"))
}

// Ports vary between connections from the same host, so throttling
// keys on the host alone.
func TestRateLimitPerIP_PortIgnored(t *testing.T) {
	r := ipRouter(1, 1, time.Hour)

	require.Equal(t, 200, ipGet(r, "10.0.0.1:1111"))
	require.Equal(t, 429, ipGet(r, "10.0.0.1:9999"))
}

func TestRateLimitPerIP_TTLEvicts(t *testing.T) {
	ttl := 10 * time.Millisecond
	r := ipRouter(1, 1, ttl)

	require.Equal(t, 200, ipGet(r, "127.0.0.1:5555"))
	require.Equal(t, 429, ipGet(r, "127.0.0.1:5555"))
	time.Sleep(ttl + 5*time.Millisecond)
	require.Equal(t, 200, ipGet(r, "127.0.0.1:5555"))
}
