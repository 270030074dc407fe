package identity

import "context"

// Repository devuelve ErrNotFound cuando no hay registro.
type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	// FindByRoleEmail compara el email case-insensitive.
	FindByRoleEmail(ctx context.Context, role Role, email string) (User, error)
	// FindPatientByHealthCard devuelve el primer paciente (orden de alta) con esa tarjeta.
	FindPatientByHealthCard(ctx context.Context, healthCard string) (User, error)
}
