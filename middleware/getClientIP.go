package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// getClientIP resolves the address the rate limiter keys on. Forwarding
// headers are client-controlled, so they are honored only when the direct
// peer is a proxy we run ourselves; otherwise anyone could spread their
// requests across arbitrary buckets with a forged X-Forwarded-For.
func getClientIP(c *gin.Context) string {
	peer := remoteIP(c.Request.RemoteAddr)

	if trustedProxy(peer) {
		// X-Forwarded-For may list several hops. The first entry is the
		// address the proxy saw the request arrive from.
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
				return first
			}
		}
		if xri := c.GetHeader("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	return peer
}

// remoteIP strips the port from an "ip:port" remote address.
func remoteIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// trustedProxy reports whether the peer address belongs to infrastructure we
// control: loopback or a private range, which is where the reverse proxy sits
// in every deployment of this service.
func trustedProxy(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}
