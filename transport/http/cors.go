package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// defaultOriginMarkers match the browser extension and the sites it runs on
var defaultOriginMarkers = []string{"chrome-extension://", "twitter.com", "x.com"}

// CORS echoes allowed origins with credentials and answers preflight requests
// before anything else runs
func CORS(extraOrigins []string) gin.HandlerFunc {
	extra := make(map[string]struct{}, len(extraOrigins))
	for _, o := range extraOrigins {
		extra[o] = struct{}{}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" && originAllowed(origin, extra) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, extra map[string]struct{}) bool {
	if _, ok := extra[origin]; ok {
		return true
	}
	for _, marker := range defaultOriginMarkers {
		if strings.Contains(origin, marker) {
			return true
		}
	}
	return false
}
