package ports

import (
	"time"

	"github.com/layer-3/socialpay/core"
)

// Tokenizer issues and verifies session tokens
type Tokenizer interface {
	// Issue mints a token for address bound to the login nonce, valid for ttl
	Issue(address, nonce string, ttl time.Duration) (string, error)

	// Verify checks the token's MAC and expiry and returns its session
	Verify(token string) (*core.Session, error)
}
