package security

import (
	"net/http"
	"net/url"
)

// SetSecurityHeaders sets the headers used on every authentication response.
// Login redirects and callback results must never be framed or cached.
func SetSecurityHeaders(w http.ResponseWriter, baseURL string) {
	h := w.Header()
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("Cache-Control", "no-store")
	h.Set("Pragma", "no-cache")

	if IsSecureURL(baseURL) {
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}
}

// IsSecureURL reports whether rawURL uses https.
func IsSecureURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.Scheme == "https"
}
