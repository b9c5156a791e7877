package webid

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSigned(t *testing.T, priv interface{ Public() crypto.PublicKey }) *x509.Certificate {
	t.Helper()
	agent, _ := url.Parse("https://alice.example/profile#me")
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "alice.example"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().AddDate(1, 0, 0),
		URIs:         []*url.URL{agent},
		DNSNames:     []string{"alice.example"},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, priv.Public(), priv)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

func TestFromX509(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cert, err := FromX509(selfSigned(t, key))
	require.NoError(t, err)

	assert.Equal(t, "URI:https://alice.example/profile#me, DNS:alice.example", cert.SubjectAltName)
	assert.Equal(t, fmt.Sprintf("%x", key.N), cert.Modulus)
	assert.Equal(t, "10001", cert.Exponent)

	uris := ExtractURIs(cert.SubjectAltName)
	require.Len(t, uris, 1)
	assert.Equal(t, "https://alice.example/profile#me", uris[0])
}

func TestFromX509_NonRSA(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	_, err = FromX509(selfSigned(t, key))
	assert.ErrorIs(t, err, ErrUnsupportedKeyType)
}

func TestFingerprint(t *testing.T) {
	a := &Certificate{Modulus: "AB12CD34", Exponent: "10001"}
	b := &Certificate{Modulus: "ab12cd34", Exponent: "10001"}
	c := &Certificate{Modulus: "ab12cd34", Exponent: "3"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "fingerprint ignores hex digit case")
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}
