package postgres

import (
	"context"
	"database/sql"
	"strings"

	"health-record-sharing/internal/domain/documents"
)

type DocumentsRepo struct {
	db *sql.DB
}

func NewDocumentsRepo(db *sql.DB) *DocumentsRepo {
	return &DocumentsRepo{db: db}
}

func (r *DocumentsRepo) Record(ctx context.Context, d documents.Document) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, name, stored_location,
			owner_patient_id, uploaded_by_id, uploaded_by_name,
			upload_date, url, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		d.ID,
		d.Name,
		d.StoredLocation,
		d.OwnerPatientID,
		d.UploadedByID,
		d.UploadedByName,
		d.UploadDate,
		d.URL,
		d.CreatedAt,
	)
	return err
}

func (r *DocumentsRepo) ListForPatient(ctx context.Context, patientID string) ([]documents.Document, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, name, stored_location,
			owner_patient_id, uploaded_by_id, uploaded_by_name,
			upload_date, url, created_at
		FROM documents
		WHERE owner_patient_id = $1
		ORDER BY seq ASC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]documents.Document, 0)
	for rows.Next() {
		var d documents.Document
		if err := rows.Scan(
			&d.ID,
			&d.Name,
			&d.StoredLocation,
			&d.OwnerPatientID,
			&d.UploadedByID,
			&d.UploadedByName,
			&d.UploadDate,
			&d.URL,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}
