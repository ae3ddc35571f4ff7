package clientinfo

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// Signature holds the facts derived from a raw user-agent string.
type Signature struct {
	Browser string
	OS      string
	Device  string
}

// ClientIP returns the best-effort client address for a request: the first
// entry of X-Forwarded-For when present (trusting the upstream proxy),
// otherwise the transport peer address. Never fails; may return "".
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ParseUserAgent maps a raw user-agent string to browser/OS/device facts.
// Unknown browser and OS default to "Unknown"; device defaults to "desktop".
// Malformed input yields all-defaults, never an error.
func ParseUserAgent(rawUA string) Signature {
	ua := useragent.New(rawUA)
	browser, _ := ua.Browser()

	sig := Signature{
		Browser: browser,
		OS:      ua.OSInfo().Name,
		Device:  "desktop",
	}
	if sig.Browser == "" {
		sig.Browser = "Unknown"
	}
	if sig.OS == "" {
		sig.OS = "Unknown"
	}
	if ua.Mobile() {
		sig.Device = "mobile"
	} else if ua.Bot() {
		sig.Device = "bot"
	}
	return sig
}
