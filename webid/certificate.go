package webid

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"
)

// Certificate carries the client-certificate fields the verifier needs.
// Modulus and Exponent are the RSA public key components as hexadecimal
// strings, the form in which X.509 tooling exposes them.
type Certificate struct {
	SubjectAltName string
	Modulus        string
	Exponent       string
}

// validate fails fast when the key material required for matching is absent.
func (c *Certificate) validate() error {
	if c.Modulus == "" {
		return ErrMissingModulus
	}
	if c.Exponent == "" {
		return ErrMissingExponent
	}
	return nil
}

// Fingerprint returns a stable identifier for the certificate public key,
// usable as a cache key for verified identities.
func (c *Certificate) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.ToLower(c.Modulus) + ":" + c.Exponent))
	return hex.EncodeToString(sum[:])
}

// FromX509 builds a Certificate from a parsed X.509 client certificate.
// Only RSA keys can be verified against a WebID profile.
func FromX509(cert *x509.Certificate) (*Certificate, error) {
	rsaKey, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, ErrUnsupportedKeyType
	}

	var entries []string
	for _, u := range cert.URIs {
		entries = append(entries, "URI:"+u.String())
	}
	for _, d := range cert.DNSNames {
		entries = append(entries, "DNS:"+d)
	}
	for _, e := range cert.EmailAddresses {
		entries = append(entries, "email:"+e)
	}
	for _, ip := range cert.IPAddresses {
		entries = append(entries, "IP Address:"+ip.String())
	}

	return &Certificate{
		SubjectAltName: strings.Join(entries, ", "),
		Modulus:        fmt.Sprintf("%x", rsaKey.N),
		Exponent:       fmt.Sprintf("%x", rsaKey.E),
	}, nil
}
