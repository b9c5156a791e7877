package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/evidenceledger/webidtls/internal/database"
	"github.com/evidenceledger/webidtls/internal/models"
	"github.com/evidenceledger/webidtls/issue"
	"github.com/evidenceledger/webidtls/spkac"
)

// IssueHandlers handles certificate issuance requests
type IssueHandlers struct {
	db *database.Database
}

// NewIssueHandlers creates new issuance handlers
func NewIssueHandlers(db *database.Database) *IssueHandlers {
	return &IssueHandlers{
		db: db,
	}
}

// Issue mints a WebID certificate from the submitted SPKAC blob and agent
// URI. Browsers enrolling through the legacy keygen flow get the raw DER
// back; everything else gets JSON with the PEM.
func (h *IssueHandlers) Issue(c *fiber.Ctx) error {
	var req models.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error("Failed to parse issuance request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	issued, err := issue.Generate(issue.Options{
		Agent:            req.Agent,
		SPKAC:            req.SPKAC,
		CountryName:      req.CountryName,
		LocalityName:     req.LocalityName,
		OrganizationName: req.OrganizationName,
	})
	if err != nil {
		slog.Error("Certificate issuance failed", "error", err, "agent", req.Agent)
		status := fiber.StatusInternalServerError
		if errors.Is(err, issue.ErrMissingAgent) ||
			errors.Is(err, issue.ErrMissingSPKAC) ||
			errors.Is(err, spkac.ErrInvalidSPKAC) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	cert := issued.Certificate
	rec := &database.IssuedCertificate{
		Serial:     cert.SerialNumber.Text(16),
		Agent:      req.Agent,
		CommonName: cert.Subject.CommonName,
		PEM:        string(issued.PEM),
		IssuedAt:   cert.NotBefore,
		ExpiresAt:  cert.NotAfter,
	}
	if err := h.db.RecordIssued(rec); err != nil {
		slog.Error("Failed to record issued certificate", "error", err)
	}

	slog.Info("Certificate issued",
		"agent", req.Agent,
		"serial", rec.Serial,
		"expires_at", cert.NotAfter,
	)

	if c.Get("Accept") == "application/x-x509-user-cert" {
		c.Set(fiber.HeaderContentType, "application/x-x509-user-cert")
		return c.Send(issued.DER)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"certificate": string(issued.PEM),
		"serial":      rec.Serial,
		"expires_at":  cert.NotAfter,
	})
}
