package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func requestContext(t *testing.T, remoteAddr string, headers map[string]string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/api/services", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	c.Request = req
	return c
}

func TestGetClientIP(t *testing.T) {
	t.Run("public peer cannot spoof via forwarding headers", func(t *testing.T) {
		c := requestContext(t, "203.0.113.7:51234", map[string]string{
			"X-Forwarded-For": "198.51.100.1",
			"X-Real-IP":       "198.51.100.2",
		})
		if got := getClientIP(c); got != "203.0.113.7" {
			t.Fatalf("got %q, want peer address", got)
		}
	})

	t.Run("loopback proxy forwards the original client", func(t *testing.T) {
		c := requestContext(t, "127.0.0.1:40000", map[string]string{
			"X-Forwarded-For": "203.0.113.9, 10.0.0.5",
		})
		if got := getClientIP(c); got != "203.0.113.9" {
			t.Fatalf("got %q, want first forwarded hop", got)
		}
	})

	t.Run("private peer falls back to X-Real-IP", func(t *testing.T) {
		c := requestContext(t, "10.0.0.5:40000", map[string]string{
			"X-Real-IP": "203.0.113.11",
		})
		if got := getClientIP(c); got != "203.0.113.11" {
			t.Fatalf("got %q, want X-Real-IP value", got)
		}
	})

	t.Run("no headers uses the remote address", func(t *testing.T) {
		c := requestContext(t, "192.0.2.4:1234", nil)
		if got := getClientIP(c); got != "192.0.2.4" {
			t.Fatalf("got %q, want remote host", got)
		}
	})

	t.Run("trusted peer with no headers keeps its own address", func(t *testing.T) {
		c := requestContext(t, "127.0.0.1:1234", nil)
		if got := getClientIP(c); got != "127.0.0.1" {
			t.Fatalf("got %q, want loopback", got)
		}
	})
}
