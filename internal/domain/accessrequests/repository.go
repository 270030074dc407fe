package accessrequests

import "context"

type Repository interface {
	Create(ctx context.Context, r AccessRequest) error
	GetByID(ctx context.Context, id string) (AccessRequest, error)

	// Decide persiste la transición solo si el registro guardado sigue pending.
	// Devuelve ErrNotFound si no existe y ErrAlreadyDecided si ya fue decidido.
	// La verificación y la escritura son atómicas.
	Decide(ctx context.Context, r AccessRequest) error

	// Listados en orden de alta.
	ListByPatient(ctx context.Context, patientID string) ([]AccessRequest, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]AccessRequest, error)
}
