// Package siwe builds, parses and validates "Sign-In with Ethereum" (EIP-4361
// style) messages and verifies the wallet signature over them.
//
// A login is a nonce handed to the browser, a message embedding that nonce,
// and a personal_sign signature over the exact message bytes:
//
//	nonce, _ := siwe.NewNonce(siwe.DefaultNonceLength)
//	text, _ := siwe.Build(siwe.Params{Domain: "example.com", Address: addr, Nonce: nonce})
//	// ... wallet signs text ...
//	fields, err := siwe.VerifyLogin(siwe.LoginInput{
//		Message: text, Signature: sig, Address: addr,
//		ExpectedDomain: "example.com", ExpectedNonce: nonce, MaxAge: 10 * time.Minute,
//	}, time.Now())
//
// All failures are *core.Error values; use core.KindOf or errors.Is against
// the core sentinels to tell them apart.
package siwe
