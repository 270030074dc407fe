package identity

import "time"

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}

// User: la clave de identidad es (Role, Email) sin distinguir mayúsculas.
// HealthCard solo aplica a pacientes.
type User struct {
	ID         string
	Role       Role
	Name       string
	Email      string
	HealthCard string

	CreatedAt time.Time
}
