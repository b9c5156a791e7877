// Package token mints signed access tokens for verified WebID identities.
package token

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// Service handles WebID token generation
type Service struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	expiry     time.Duration
}

// NewService creates a new token service with a fresh signing key.
func NewService(issuer string, expiry time.Duration) (*Service, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	if expiry <= 0 {
		expiry = time.Hour
	}

	slog.Info("Token service initialized", "issuer", issuer, "expiry", expiry)
	return &Service{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		issuer:     issuer,
		expiry:     expiry,
	}, nil
}

// GenerateWebIDToken generates a signed token asserting that the holder of
// the key with the given fingerprint verified as webid.
func (s *Service) GenerateWebIDToken(webid, fingerprint string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"iss":         s.issuer,
		"sub":         webid,
		"exp":         now.Add(s.expiry).Unix(),
		"iat":         now.Unix(),
		"webid":       webid,
		"fingerprint": fingerprint,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)

	tokenString, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign webid token: %w", err)
	}

	slog.Debug("WebID token generated",
		"subject", webid,
		"expiration", claims["exp"],
	)

	return tokenString, nil
}

// GetJWKS returns the JSON Web Key Set holding the verification key.
func (s *Service) GetJWKS() map[string]any {

	jk, err := jwk.Import(s.publicKey)
	if err != nil {
		return nil
	}

	jk.Set("use", "sig")
	jk.Set(jwk.KeyIDKey, "webidtls-key")
	jk.Set(jwk.AlgorithmKey, "RS256")

	return map[string]any{
		"keys": []any{jk},
	}
}
