package database

import (
	"time"

	"github.com/pkg/errors"
)

// VerificationAttempt is one audit record of the authentication endpoint.
type VerificationAttempt struct {
	ID          int64
	WebID       string
	Fingerprint string
	Success     bool
	Error       string
	CreatedAt   time.Time
}

// RecordVerification appends one attempt to the audit trail.
func (d *Database) RecordVerification(att *VerificationAttempt) error {
	query := `
		INSERT INTO verification_attempts (webid, fingerprint, success, error)
		VALUES (?, ?, ?, ?)
	`

	res, err := d.db.Exec(query, att.WebID, att.Fingerprint, att.Success, att.Error)
	if err != nil {
		return errors.Wrap(err, "failed to record verification attempt")
	}

	att.ID, _ = res.LastInsertId()
	return nil
}

// ListVerifications retrieves the most recent verification attempts.
func (d *Database) ListVerifications(limit int) ([]VerificationAttempt, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, webid, fingerprint, success, COALESCE(error, ''), created_at
		FROM verification_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list verification attempts")
	}
	defer rows.Close()

	var atts []VerificationAttempt
	for rows.Next() {
		var att VerificationAttempt
		err := rows.Scan(
			&att.ID, &att.WebID, &att.Fingerprint,
			&att.Success, &att.Error, &att.CreatedAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan verification attempt")
		}
		atts = append(atts, att)
	}

	return atts, rows.Err()
}
