package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/socialpay/service"
	"github.com/layer-3/socialpay/siwe"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Nonce issues a login nonce, bound to the browser through the login_nonce cookie
func (h *AuthHandlers) Nonce(c *gin.Context) {
	challenge, err := h.authService.Challenge(c.Request.Context(), service.ChallengeRequest{
		Domain:    requestHost(c.Request),
		Scheme:    requestScheme(c.Request),
		Address:   c.Query("address"),
		Statement: c.Query("statement"),
		ChainID:   c.Query("chainId"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	payload := gin.H{
		"nonce":  challenge.Nonce.Value,
		"domain": challenge.Domain,
	}
	if challenge.Message != "" {
		payload["message"] = challenge.Message
		payload["address"] = challenge.Address
		payload["chainId"] = challenge.ChainID
	}

	setCookie(c, NonceCookie, challenge.Nonce.Value, int(challenge.Nonce.MaxAge/time.Second))
	c.JSON(http.StatusOK, payload)
}

type verifyRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
	Message   string `json:"message"`
}

// Verify checks a signed message and starts a session
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, "Invalid JSON body")
		return
	}
	if req.Address == "" || req.Signature == "" || req.Message == "" {
		abortBadRequest(c, "Missing required fields: address, signature, message")
		return
	}

	cookieNonce, _ := c.Cookie(NonceCookie)

	result, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Address:     req.Address,
		Signature:   req.Signature,
		Message:     req.Message,
		CookieNonce: cookieNonce,
		Domain:      requestHost(c.Request),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	clearCookie(c, NonceCookie)
	setCookie(c, SessionCookie, result.Token, int(h.authService.SessionTTL()/time.Second))
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"address": result.Session.Address,
	})
}

// Logout clears the session and any pending login nonce
func (h *AuthHandlers) Logout(c *gin.Context) {
	h.authService.Logout(c.Request.Context(), sessionToken(c.Request))

	clearCookie(c, SessionCookie)
	clearCookie(c, NonceCookie)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Protected resolves the session on its own, cookie first
// then bearer token
func (h *AuthHandlers) Protected(c *gin.Context) {
	token := sessionToken(c.Request)
	if token == "" {
		abortUnauthorized(c, "Missing session token")
		return
	}

	session, err := h.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		abortUnauthorized(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"address":   session.Address,
		"nonce":     session.Nonce,
		"iat":       session.IssuedAt.Unix(),
		"exp":       session.ExpiresAt.Unix(),
		"expiresAt": siwe.FormatTime(session.ExpiresAt),
		"message":   "You have accessed a protected resource.",
	})
}

// Me returns information about the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	session, ok := SessionFrom(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet": session.Address,
		"nonce":  session.Nonce,
		"exp":    session.ExpiresAt.Unix(),
		"iat":    session.IssuedAt.Unix(),
	})
}

// Health answers liveness checks
func Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
