package core

import "errors"

// Kind classifies an authentication failure
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidDomain
	KindInvalidAddress
	KindMissingNonce
	KindMissingIssuedAt
	KindDomainMismatch
	KindAddressMismatch
	KindNonceMismatch
	KindMessageTooOld
	KindMessageExpired
	KindInvalidField
	KindInvalidSignature
	KindInvalidSession
	KindConfiguration
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindInvalidDomain:    "invalid_domain",
	KindInvalidAddress:   "invalid_address",
	KindMissingNonce:     "missing_nonce",
	KindMissingIssuedAt:  "missing_issued_at",
	KindDomainMismatch:   "domain_mismatch",
	KindAddressMismatch:  "address_mismatch",
	KindNonceMismatch:    "nonce_mismatch",
	KindMessageTooOld:    "message_too_old",
	KindMessageExpired:   "message_expired",
	KindInvalidField:     "invalid_field",
	KindInvalidSignature: "invalid_signature",
	KindInvalidSession:   "invalid_session",
	KindConfiguration:    "configuration_error",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// ParseKind is the inverse of Kind.String; unknown names yield KindUnknown
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// IsValidation reports whether the kind is a client input error
func (k Kind) IsValidation() bool {
	return k >= KindInvalidDomain && k <= KindInvalidField
}

// IsAuthentication reports whether the kind is a credential rejection
func (k Kind) IsAuthentication() bool {
	return k == KindInvalidSignature || k == KindInvalidSession
}

// Error is an authentication failure carrying its kind
type Error struct {
	Kind Kind
	Msg  string
}

// NewError builds an Error of the given kind with a human readable message
func NewError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Kind.String()
}

// Is matches any *Error of the same kind, so detailed errors satisfy errors.Is against the sentinels below
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	// ErrInvalidDomain is returned when a domain does not match the host-name grammar
	ErrInvalidDomain = &Error{Kind: KindInvalidDomain, Msg: "invalid or missing domain"}

	// ErrInvalidAddress is returned when an address is not a 20-byte hex account
	ErrInvalidAddress = &Error{Kind: KindInvalidAddress, Msg: "invalid ethereum address"}

	// ErrMissingNonce is returned when no nonce is available
	ErrMissingNonce = &Error{Kind: KindMissingNonce, Msg: "missing nonce"}

	// ErrMissingIssuedAt is returned when the message has no usable Issued At
	ErrMissingIssuedAt = &Error{Kind: KindMissingIssuedAt, Msg: "missing 'Issued At' in message"}

	ErrDomainMismatch  = &Error{Kind: KindDomainMismatch, Msg: "domain mismatch"}
	ErrAddressMismatch = &Error{Kind: KindAddressMismatch, Msg: "address mismatch"}
	ErrNonceMismatch   = &Error{Kind: KindNonceMismatch, Msg: "nonce mismatch"}
	ErrMessageTooOld   = &Error{Kind: KindMessageTooOld, Msg: "message too old"}
	ErrMessageExpired  = &Error{Kind: KindMessageExpired, Msg: "message has expired"}

	// ErrInvalidField is returned when a statement would not survive a parse of the built message
	ErrInvalidField = &Error{Kind: KindInvalidField, Msg: "statement must be a single line without surrounding whitespace"}

	// ErrInvalidSignature is returned when the recovered signer differs from the claimed address
	ErrInvalidSignature = &Error{Kind: KindInvalidSignature, Msg: "invalid signature"}

	// ErrInvalidSession is returned for a session token with a bad MAC or past expiry
	ErrInvalidSession = &Error{Kind: KindInvalidSession, Msg: "invalid or expired session"}

	// ErrConfiguration is returned when the server is missing required configuration
	ErrConfiguration = &Error{Kind: KindConfiguration, Msg: "configuration error"}
)
