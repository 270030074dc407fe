// Package visibility decide si un médico puede listar los documentos de un
// paciente. Solo lee el estado del Access Request Engine; nunca lo modifica.
package visibility

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"health-record-sharing/internal/domain/accessrequests"
	"health-record-sharing/internal/domain/identity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	ErrDoctorNotFound  = fmt.Errorf("doctor %w", ErrNotFound)
	ErrPatientNotFound = fmt.Errorf("patient %w", ErrNotFound)
)

const (
	ReasonNoApprovedAccess = "No approved access for this patient"

	onlyYouSummary = "Only you can view this."
	fallbackDoctor = "Doctor"
)

// Requests es la vista de solo lectura del engine.
type Requests interface {
	ListApproved(ctx context.Context, doctorID, patientID string) ([]accessrequests.AccessRequest, error)
	ListApprovedForPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error)
}

type Directory interface {
	FindDoctorByID(ctx context.Context, id string) (identity.User, error)
	FindPatientByHealthCard(ctx context.Context, healthCard string) (identity.User, error)
}

// Decision: Allowed => Patient resuelto; !Allowed => Reason.
type Decision struct {
	Allowed bool
	Patient identity.User
	Reason  string
}

type Gate struct {
	requests Requests
	users    Directory
}

func NewGate(requests Requests, users Directory) *Gate {
	return &Gate{requests: requests, users: users}
}

// CanView: alcanza con un solo request aprobado para el par (médico, paciente),
// sin importar sus flags de permisos. No hay expiración.
func (g *Gate) CanView(ctx context.Context, doctorID, patientHealthCard string) (Decision, error) {
	doctor, err := g.users.FindDoctorByID(ctx, strings.TrimSpace(doctorID))
	if err != nil {
		return Decision{}, lookupErr(err, ErrDoctorNotFound)
	}
	patient, err := g.users.FindPatientByHealthCard(ctx, strings.TrimSpace(patientHealthCard))
	if err != nil {
		return Decision{}, lookupErr(err, ErrPatientNotFound)
	}

	approved, err := g.requests.ListApproved(ctx, doctor.ID, patient.ID)
	if err != nil {
		return Decision{}, err
	}
	if len(approved) == 0 {
		return Decision{Allowed: false, Reason: ReasonNoApprovedAccess}, ErrForbidden
	}
	return Decision{Allowed: true, Patient: patient}, nil
}

// SharingSummary arma el texto que ve el paciente junto a sus documentos.
func (g *Gate) SharingSummary(ctx context.Context, patientID string) (string, error) {
	approved, err := g.requests.ListApprovedForPatient(ctx, patientID)
	if err != nil {
		return "", err
	}

	seen := map[string]struct{}{}
	names := make([]string, 0, len(approved))
	for _, r := range approved {
		doctor, err := g.users.FindDoctorByID(ctx, r.DoctorID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				continue
			}
			return "", err
		}
		name := strings.TrimSpace(doctor.Name)
		if name == "" {
			name = fallbackDoctor
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	if len(names) == 0 {
		return onlyYouSummary, nil
	}
	return "Shared with " + strings.Join(names, ", "), nil
}

func lookupErr(err, notFound error) error {
	if errors.Is(err, identity.ErrNotFound) {
		return notFound
	}
	return err
}
