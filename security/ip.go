package security

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// GetClientIP returns the address of the client that sent r.
//
// Proxy headers are only consulted when trustProxy is set. trustedProxies is
// the number of proxies appended to X-Forwarded-For that belong to the
// deployment; 0 is treated as 1.
func GetClientIP(r *http.Request, trustProxy bool, trustedProxies int) string {
	if trustProxy {
		if ip := forwardedFor(r.Header.Get("X-Forwarded-For"), trustedProxies); ip != "" {
			return ip
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); validIP(ip) {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// forwardedFor picks the client entry of an X-Forwarded-For list by skipping
// the trusted hops from the right.
func forwardedFor(header string, trustedProxies int) string {
	if header == "" {
		return ""
	}
	if trustedProxies <= 0 {
		trustedProxies = 1
	}
	hops := strings.Split(header, ",")
	idx := max(len(hops)-trustedProxies-1, 0)
	ip := strings.TrimSpace(hops[idx])
	if !validIP(ip) {
		return ""
	}
	return ip
}

func validIP(s string) bool {
	if s == "" {
		return false
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}
