package webid

import "errors"

// Verification failures. All of them are terminal: the verifier never
// retries, and every failure is surfaced to the caller as-is.
var (
	ErrNoCertificate      = errors.New("no certificate supplied")
	ErrEmptySAN           = errors.New("no URI entries in certificate subject alternative name")
	ErrMissingModulus     = errors.New("certificate has no modulus")
	ErrMissingExponent    = errors.New("certificate has no exponent")
	ErrProfileFetch       = errors.New("profile fetch failed")
	ErrProfileParse       = errors.New("profile parse failed")
	ErrKeyNotFound        = errors.New("certificate public key not found in profile")
	ErrUnsupportedKeyType = errors.New("certificate public key is not RSA")
)
