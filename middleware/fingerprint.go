package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tourwithmark/engagement/utils"
)

// FingerprintKey is the gin context key holding the visitor fingerprint.
const FingerprintKey = "visitor_fingerprint"

// Fingerprint derives the visitor fingerprint once per request.
func Fingerprint(trustForwarded bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(FingerprintKey, utils.RequestFingerprint(c.Request, trustForwarded))
		c.Next()
	}
}

// VisitorFingerprint reads the value set by Fingerprint, deriving it if the middleware
// did not run.
func VisitorFingerprint(c *gin.Context, trustForwarded bool) string {
	if v := c.GetString(FingerprintKey); v != "" {
		return v
	}
	return utils.RequestFingerprint(c.Request, trustForwarded)
}
