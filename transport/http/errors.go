package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/socialpay/core"
)

// statusFor maps an error kind to its HTTP status. Message text is never inspected.
func statusFor(err error) int {
	kind := core.KindOf(err)
	switch {
	case kind.IsValidation():
		return http.StatusBadRequest
	case kind.IsAuthentication():
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError writes {error, code} for err. Server-side failures are
// logged and their details withheld from the client.
func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	kind := core.KindOf(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"path", c.Request.URL.Path, "code", kind.String(), "error", err)
		msg = "Internal server error"
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": kind.String()})
}

func abortBadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": "bad_request"})
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": core.KindInvalidSession.String()})
}
