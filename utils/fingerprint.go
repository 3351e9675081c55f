package utils

import (
	"encoding/base64"
	"net"
	"net/http"
	"strings"
)

// maxFingerprintSource bounds the "address-useragent" text before encoding.
const maxFingerprintSource = 255

// Fingerprint derives the visitor identifier from an address and a user agent. It is a
// reversible encoding, not a hash: equal inputs give equal output, and distinct visitors
// behind one NAT with the same browser collide.
func Fingerprint(address, userAgent string) string {
	src := address + "-" + userAgent
	if len(src) > maxFingerprintSource {
		src = src[:maxFingerprintSource]
	}
	return base64.StdEncoding.EncodeToString([]byte(src))
}

// RequestAddress returns the raw X-Forwarded-For value when trusted and present,
// otherwise the connection address without its port.
func RequestAddress(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if v := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); v != "" {
			return v
		}
	}
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return h
	}
	return r.RemoteAddr
}

// RequestFingerprint is Fingerprint applied to a request's address and User-Agent.
func RequestFingerprint(r *http.Request, trustForwarded bool) string {
	return Fingerprint(RequestAddress(r, trustForwarded), r.Header.Get("User-Agent"))
}
