package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// NonceCookie binds a login nonce to the browser that requested it
	NonceCookie = "login_nonce"

	// SessionCookie carries the session token
	SessionCookie = "session"
)

func setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", isHTTPS(c.Request), true)
}

// clearCookie expires the cookie immediately
func clearCookie(c *gin.Context, name string) {
	setCookie(c, name, "", -1)
}
