package handlers

import (
	"crypto/x509"
	"encoding/base64"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/webidtls/internal/cache"
	"github.com/evidenceledger/webidtls/internal/database"
	"github.com/evidenceledger/webidtls/internal/models"
	"github.com/evidenceledger/webidtls/internal/token"
	"github.com/evidenceledger/webidtls/webid"
)

// AuthHandlers handles WebID-TLS authentication requests
type AuthHandlers struct {
	verifier *webid.Verifier
	tokens   *token.Service
	db       *database.Database
	cache    *cache.Cache
}

// NewAuthHandlers creates new authentication handlers
func NewAuthHandlers(verifier *webid.Verifier, tokens *token.Service, db *database.Database, cache *cache.Cache) *AuthHandlers {
	return &AuthHandlers{
		verifier: verifier,
		tokens:   tokens,
		db:       db,
		cache:    cache,
	}
}

// Authenticate handles WebID-TLS authentication. The terminating proxy
// forwards the TLS client certificate base64-DER encoded in the
// tls-client-certificate header.
func (h *AuthHandlers) Authenticate(c *fiber.Ctx) error {
	slog.Debug("WebID authentication request received")

	certHeader := c.Get("tls-client-certificate")
	if certHeader == "" {
		slog.Error("No certificate provided in tls-client-certificate header")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "No certificate provided",
		})
	}

	certData, err := base64.StdEncoding.DecodeString(certHeader)
	if err != nil {
		slog.Error("Failed to decode certificate", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid certificate encoding",
		})
	}

	x509Cert, err := x509.ParseCertificate(certData)
	if err != nil {
		slog.Error("Failed to parse certificate", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid certificate format",
		})
	}

	// Check certificate expiration
	now := time.Now()
	if now.Before(x509Cert.NotBefore) {
		slog.Error("Certificate not yet valid",
			"not_before", x509Cert.NotBefore, "current_time", now)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Certificate not yet valid",
		})
	}
	if now.After(x509Cert.NotAfter) {
		slog.Error("Certificate expired",
			"not_after", x509Cert.NotAfter, "current_time", now)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Certificate is expired",
		})
	}

	cert, err := webid.FromX509(x509Cert)
	if err != nil {
		slog.Error("Unsupported certificate key", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	fingerprint := cert.Fingerprint()

	// A key that verified recently skips the profile round trip.
	if uri, ok := h.cache.Lookup(fingerprint); ok {
		slog.Info("WebID authentication served from cache", "webid", uri)
		return h.respondVerified(c, uri, fingerprint, true)
	}

	uri, err := h.verifier.Verify(c.UserContext(), cert)
	if err != nil {
		slog.Error("WebID verification failed", "error", err, "fingerprint", fingerprint)
		h.audit(&database.VerificationAttempt{
			Fingerprint: fingerprint,
			Error:       err.Error(),
		})
		return c.Status(statusForVerifyError(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	slog.Info("WebID authentication successful", "webid", uri, "fingerprint", fingerprint)
	h.cache.Put(fingerprint, uri, 0)
	h.audit(&database.VerificationAttempt{
		WebID:       uri,
		Fingerprint: fingerprint,
		Success:     true,
	})

	return h.respondVerified(c, uri, fingerprint, false)
}

// JWKS serves the verification key for tokens minted by Authenticate.
func (h *AuthHandlers) JWKS(c *fiber.Ctx) error {
	return c.JSON(h.tokens.GetJWKS())
}

func (h *AuthHandlers) respondVerified(c *fiber.Ctx, uri, fingerprint string, cached bool) error {
	signed, err := h.tokens.GenerateWebIDToken(uri, fingerprint)
	if err != nil {
		slog.Error("Failed to generate webid token", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": models.VerifiedIdentity{
			WebID:       uri,
			Fingerprint: fingerprint,
			Token:       signed,
			Cached:      cached,
		},
	})
}

func (h *AuthHandlers) audit(att *database.VerificationAttempt) {
	if err := h.db.RecordVerification(att); err != nil {
		slog.Error("Failed to record verification attempt", "error", err)
	}
}

// statusForVerifyError maps verification failures to HTTP statuses:
// defective certificates are client errors, unreachable or unparseable
// profiles are upstream errors, and a clean no-match is an authentication
// failure.
func statusForVerifyError(err error) int {
	switch {
	case errors.Is(err, webid.ErrNoCertificate),
		errors.Is(err, webid.ErrEmptySAN),
		errors.Is(err, webid.ErrMissingModulus),
		errors.Is(err, webid.ErrMissingExponent),
		errors.Is(err, webid.ErrUnsupportedKeyType):
		return fiber.StatusBadRequest
	case errors.Is(err, webid.ErrProfileFetch),
		errors.Is(err, webid.ErrProfileParse):
		return fiber.StatusBadGateway
	case errors.Is(err, webid.ErrKeyNotFound):
		return fiber.StatusUnauthorized
	}
	return fiber.StatusInternalServerError
}
