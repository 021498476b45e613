package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/socialpay/core"
	"github.com/layer-3/socialpay/internal/eth"
	"github.com/layer-3/socialpay/service"
)

// SocialHandlers serves lookups against the SocialLinking contract
type SocialHandlers struct {
	social *service.SocialService // nil when no contract is configured
}

// NewSocialHandlers creates social handlers. A nil service answers 503.
func NewSocialHandlers(social *service.SocialService) *SocialHandlers {
	return &SocialHandlers{social: social}
}

func (h *SocialHandlers) available(c *gin.Context) bool {
	if h.social == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": "Social lookups are not configured",
			"code":  "unavailable",
		})
		return false
	}
	return true
}

// Get returns the handles linked to ?wallet=
func (h *SocialHandlers) Get(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		abortBadRequest(c, "Missing wallet parameter")
		return
	}
	if !eth.IsAddress(wallet) {
		abortBadRequest(c, "Invalid Ethereum address")
		return
	}
	if !h.available(c) {
		return
	}

	link, err := h.social.GetSocialLink(c.Request.Context(), wallet)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if link == nil {
		c.JSON(http.StatusOK, gin.H{
			"linked":  false,
			"wallet":  wallet,
			"socials": nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"linked": true,
		"wallet": wallet,
		"socials": gin.H{
			"twitter":   nullable(link.Twitter),
			"instagram": nullable(link.Instagram),
			"linkedin":  nullable(link.LinkedIn),
		},
	})
}

// PendingClaims lists unclaimed payments sent to the caller's linked handles
func (h *SocialHandlers) PendingClaims(c *gin.Context) {
	session, ok := SessionFrom(c)
	if !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}
	if !h.available(c) {
		return
	}

	res, err := h.social.PendingClaims(c.Request.Context(), session.Address)
	if err != nil {
		abortWithError(c, err)
		return
	}

	message := "No pending claims"
	switch {
	case !res.Linked:
		message = "No social accounts linked"
	case len(res.Claims) > 0:
		message = fmt.Sprintf("Found %d pending claim(s)", len(res.Claims))
	}

	c.JSON(http.StatusOK, gin.H{
		"claims":  res.Claims,
		"message": message,
	})
}

// PaymentHistory reports what ?handle= has been paid so far
func (h *SocialHandlers) PaymentHistory(c *gin.Context) {
	if _, ok := SessionFrom(c); !ok {
		abortUnauthorized(c, "Unauthorized")
		return
	}
	if core.NormalizeHandle(c.Query("handle")) == "" {
		abortBadRequest(c, "Handle parameter required")
		return
	}
	if !h.available(c) {
		return
	}

	history, err := h.social.PaymentHistory(c.Request.Context(), c.Query("handle"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
