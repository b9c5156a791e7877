// Package issue mints self-signed WebID certificates from a browser-supplied
// SPKAC blob. It is an identity-assertion minter, not a CA: the subject key
// comes from the caller and the signing key is generated fresh and discarded.
package issue

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/evidenceledger/webidtls/spkac"
)

// Issuance input validation failures.
var (
	ErrMissingAgent = errors.New("missing agent uri")
	ErrMissingSPKAC = errors.New("missing spkac")
)

// placeholder fills distinguished-name attributes the caller left out.
const placeholder = "."

// Options describes the certificate to mint. Agent and SPKAC are required.
type Options struct {
	Agent            string
	SPKAC            string
	CountryName      string
	LocalityName     string
	OrganizationName string
}

// IssuedCertificate is a freshly minted certificate, returned and never
// persisted by this package.
type IssuedCertificate struct {
	Certificate *x509.Certificate
	DER         []byte
	PEM         []byte
}

// Generate validates the SPKAC blob, extracts its public key and mints a
// certificate valid for exactly one year, carrying the agent URI as a SAN
// extension and a subject-key-identifier extension.
func Generate(opts Options) (*IssuedCertificate, error) {
	if opts.Agent == "" {
		return nil, ErrMissingAgent
	}
	if opts.SPKAC == "" {
		return nil, ErrMissingSPKAC
	}

	parsed, err := spkac.Parse(opts.SPKAC)
	if err != nil {
		return nil, err
	}

	agent, err := url.Parse(opts.Agent)
	if err != nil {
		return nil, fmt.Errorf("invalid agent uri: %w", err)
	}
	commonName := agent.Hostname()
	if commonName == "" {
		commonName = placeholder
	}

	// The signing key is unrelated to the subject key on purpose.
	signer, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}

	spkiDER, err := x509.MarshalPKIXPublicKey(parsed.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("marshal subject key: %w", err)
	}
	ski := sha1.Sum(spkiDER)

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   commonName,
			Organization: []string{orPlaceholder(opts.OrganizationName)},
			Locality:     []string{orPlaceholder(opts.LocalityName)},
			Country:      []string{orPlaceholder(opts.CountryName)},
		},
		NotBefore:    now,
		NotAfter:     now.AddDate(1, 0, 0),
		URIs:         []*url.URL{agent},
		SubjectKeyId: ski[:],
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, parsed.PublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parse created certificate: %w", err)
	}

	return &IssuedCertificate{
		Certificate: cert,
		DER:         der,
		PEM:         pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}, nil
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
