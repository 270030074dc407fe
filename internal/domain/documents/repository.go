package documents

import "context"

type Repository interface {
	Record(ctx context.Context, d Document) error
	// ListForPatient respeta el orden de alta.
	ListForPatient(ctx context.Context, patientID string) ([]Document, error)
}
