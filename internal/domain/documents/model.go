package documents

import "time"

// Document es inmutable una vez registrado.
type Document struct {
	ID             string
	Name           string // nombre original del archivo
	StoredLocation string // key en el blob store
	OwnerPatientID string
	UploadedByID   string
	UploadedByName string
	UploadDate     string // YYYY-MM-DD
	URL            string

	CreatedAt time.Time
}
