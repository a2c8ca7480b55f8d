package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ClientContext carries the request-scoped environment an entry is enriched
// with. Handlers build it from the incoming request; system callers leave it
// zero.
type ClientContext struct {
	IPAddress   string
	UserAgent   string
	RequestID   string
	Referrer    string
	Language    string
	Geolocation string
}

// Fingerprint derives a stable client identifier from the request attributes.
// It is a correlation aid, not an authentication factor.
func (c ClientContext) Fingerprint() string {
	if c.IPAddress == "" && c.UserAgent == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(c.IPAddress + "|" + c.UserAgent + "|" + c.Language))
	return hex.EncodeToString(sum[:16])
}

// DeviceType classifies the client from its user agent string.
func (c ClientContext) DeviceType() string {
	ua := strings.ToLower(c.UserAgent)
	switch {
	case ua == "":
		return ""
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

// OS guesses the client operating system from the user agent string.
func (c ClientContext) OS() string {
	ua := strings.ToLower(c.UserAgent)
	switch {
	case ua == "":
		return ""
	case strings.Contains(ua, "windows"):
		return "windows"
	case strings.Contains(ua, "android"):
		return "android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ios"):
		return "ios"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macintosh"):
		return "macos"
	case strings.Contains(ua, "linux"):
		return "linux"
	default:
		return "other"
	}
}
