package ports

import (
	"context"

	"github.com/layer-3/socialpay/core"
)

// SocialReader reads the SocialLinking contract
type SocialReader interface {
	// GetSocialLink returns nil when the wallet has never linked a handle
	GetSocialLink(ctx context.Context, wallet string) (*core.SocialLink, error)
	GetPendingClaim(ctx context.Context, handle string) (*core.PendingClaim, error)
}
