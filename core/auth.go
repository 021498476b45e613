package core

import "time"

// Nonce is a login nonce together with how long the client should keep it
type Nonce struct {
	Value  string        // Lowercase hex random value
	MaxAge time.Duration // Lifetime of the binding cookie
}

// SignInMessage holds the fields of an EIP-4361 style sign-in message
type SignInMessage struct {
	Domain         string
	Address        string
	Statement      string
	URI            string
	Version        string
	ChainID        string
	Nonce          string
	IssuedAt       string
	ExpirationTime string
	Resources      []string
}

// Session represents an authenticated wallet session decoded from a session token
type Session struct {
	ID        string    // Token identifier
	Address   string    // Checksummed wallet address
	Nonce     string    // Login nonce consumed to mint the session
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session stops being accepted
}

// Challenge is what a client receives when starting a login
type Challenge struct {
	Nonce   Nonce
	Domain  string
	Address string // Empty when the client did not announce an address
	ChainID string
	Message string // Ready-to-sign message, only built when Address is set
}
