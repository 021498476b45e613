package siwe

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/layer-3/socialpay/core"
)

// DefaultNonceLength is the number of random bytes in a nonce (32 hex characters)
const DefaultNonceLength = 16

// randReader is swapped in tests to simulate a broken entropy source
var randReader io.Reader = rand.Reader

// NewNonce returns length cryptographically secure random bytes as lowercase hex.
// A failing random source is a configuration error, not a retryable one.
func NewNonce(length int) (string, error) {
	if length <= 0 {
		length = DefaultNonceLength
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", core.NewError(core.KindConfiguration, "secure random source is not available: "+err.Error())
	}
	return hex.EncodeToString(buf), nil
}
