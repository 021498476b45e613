package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the login nonce the session was minted from
type SessionClaims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce"`
}
