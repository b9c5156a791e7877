package database

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// IssuedCertificate is one certificate minted by the issuance endpoint.
type IssuedCertificate struct {
	ID         int64
	Serial     string
	Agent      string
	CommonName string
	PEM        string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// RecordIssued stores a freshly minted certificate.
func (d *Database) RecordIssued(rec *IssuedCertificate) error {
	query := `
		INSERT INTO issued_certificates (serial, agent, common_name, pem, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := d.db.Exec(query,
		rec.Serial, rec.Agent, rec.CommonName, rec.PEM, rec.IssuedAt, rec.ExpiresAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to record issued certificate")
	}

	rec.ID, _ = res.LastInsertId()
	slog.Info("Certificate issuance recorded", "serial", rec.Serial, "agent", rec.Agent)
	return nil
}

// ListIssued retrieves the most recently issued certificates.
func (d *Database) ListIssued(limit int) ([]IssuedCertificate, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, serial, agent, common_name, pem, issued_at, expires_at
		FROM issued_certificates
		ORDER BY issued_at DESC
		LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list issued certificates")
	}
	defer rows.Close()

	var recs []IssuedCertificate
	for rows.Next() {
		var rec IssuedCertificate
		err := rows.Scan(
			&rec.ID, &rec.Serial, &rec.Agent, &rec.CommonName,
			&rec.PEM, &rec.IssuedAt, &rec.ExpiresAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan issued certificate")
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}
