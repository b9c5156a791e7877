// Package spkac parses and validates Signed Public Key and Challenge blobs,
// the legacy browser key-generation output used to enroll WebID certificates.
package spkac

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
)

// ErrInvalidSPKAC is returned for blobs that cannot be decoded or whose
// internal signature does not verify with the embedded key.
var ErrInvalidSPKAC = errors.New("invalid spkac")

var (
	oidMD5WithRSA    = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 4}
	oidSHA1WithRSA   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}
	oidSHA256WithRSA = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}
)

// PublicKeyAndChallenge ::= SEQUENCE { spki SubjectPublicKeyInfo, challenge IA5String }
type publicKeyAndChallenge struct {
	SPKI      asn1.RawValue
	Challenge string `asn1:"ia5"`
}

//	SignedPublicKeyAndChallenge ::= SEQUENCE {
//	  publicKeyAndChallenge PublicKeyAndChallenge,
//	  signatureAlgorithm    AlgorithmIdentifier,
//	  signature             BIT STRING }
type signedPublicKeyAndChallenge struct {
	PublicKeyAndChallenge asn1.RawValue
	SignatureAlgorithm    pkix.AlgorithmIdentifier
	Signature             asn1.BitString
}

// SPKAC holds the validated contents of a blob.
type SPKAC struct {
	PublicKey *rsa.PublicKey
	Challenge string
}

// Parse decodes a base64 SPKAC blob and verifies its internal signature
// against the embedded public key. Browsers historically sign with
// MD5-with-RSA; SHA-1 and SHA-256 variants are accepted too.
func Parse(blob string) (*SPKAC, error) {
	der, err := base64.StdEncoding.DecodeString(stripWhitespace(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSPKAC, err)
	}

	var signed signedPublicKeyAndChallenge
	if rest, err := asn1.Unmarshal(der, &signed); err != nil || len(rest) > 0 {
		return nil, fmt.Errorf("%w: malformed structure", ErrInvalidSPKAC)
	}

	var pkac publicKeyAndChallenge
	if rest, err := asn1.Unmarshal(signed.PublicKeyAndChallenge.FullBytes, &pkac); err != nil || len(rest) > 0 {
		return nil, fmt.Errorf("%w: malformed public key and challenge", ErrInvalidSPKAC)
	}

	pub, err := x509.ParsePKIXPublicKey(pkac.SPKI.FullBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSPKAC, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: embedded public key is not RSA", ErrInvalidSPKAC)
	}

	hash, err := hashForOID(signed.SignatureAlgorithm.Algorithm)
	if err != nil {
		return nil, err
	}
	h := hash.New()
	h.Write(signed.PublicKeyAndChallenge.FullBytes)
	if err := rsa.VerifyPKCS1v15(rsaPub, hash, h.Sum(nil), signed.Signature.RightAlign()); err != nil {
		return nil, fmt.Errorf("%w: signature verification failed", ErrInvalidSPKAC)
	}

	return &SPKAC{PublicKey: rsaPub, Challenge: pkac.Challenge}, nil
}

// New builds a signed SPKAC blob for the given key, the same shape a
// browser's key generator would submit. Used by enrollment tooling and tests.
func New(priv *rsa.PrivateKey, challenge string) (string, error) {
	spkiDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", fmt.Errorf("marshal public key: %w", err)
	}

	pkacDER, err := asn1.Marshal(publicKeyAndChallenge{
		SPKI:      asn1.RawValue{FullBytes: spkiDER},
		Challenge: challenge,
	})
	if err != nil {
		return "", fmt.Errorf("marshal public key and challenge: %w", err)
	}

	h := crypto.MD5.New()
	h.Write(pkacDER)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.MD5, h.Sum(nil))
	if err != nil {
		return "", fmt.Errorf("sign spkac: %w", err)
	}

	der, err := asn1.Marshal(signedPublicKeyAndChallenge{
		PublicKeyAndChallenge: asn1.RawValue{FullBytes: pkacDER},
		SignatureAlgorithm: pkix.AlgorithmIdentifier{
			Algorithm:  oidMD5WithRSA,
			Parameters: asn1.NullRawValue,
		},
		Signature: asn1.BitString{Bytes: sig, BitLength: len(sig) * 8},
	})
	if err != nil {
		return "", fmt.Errorf("marshal spkac: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func hashForOID(oid asn1.ObjectIdentifier) (crypto.Hash, error) {
	switch {
	case oid.Equal(oidMD5WithRSA):
		return crypto.MD5, nil
	case oid.Equal(oidSHA1WithRSA):
		return crypto.SHA1, nil
	case oid.Equal(oidSHA256WithRSA):
		return crypto.SHA256, nil
	}
	return 0, fmt.Errorf("%w: unsupported signature algorithm %v", ErrInvalidSPKAC, oid)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
