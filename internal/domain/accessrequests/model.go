package accessrequests

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

type AccessType string

const (
	AccessTemporary AccessType = "temporary"
	AccessPermanent AccessType = "permanent"
)

func (t AccessType) Valid() bool {
	return t == AccessTemporary || t == AccessPermanent
}

// DefaultDurationHours aplica solo a grants temporales. Es metadata:
// nada expira automáticamente.
const DefaultDurationHours = 48

// Permissions es un set cerrado de capacidades.
type Permissions struct {
	View     bool `json:"view"`
	Download bool `json:"download"`
	Upload   bool `json:"upload"`
	Annotate bool `json:"annotate"`
	Imaging  bool `json:"imaging"`
}

func DefaultPermissions() Permissions {
	return Permissions{
		View:     true,
		Download: true,
		Upload:   false,
		Annotate: true,
		Imaging:  false,
	}
}

// AccessRequest: pending -> approved | denied, una sola vez.
// AccessType, Permissions y DurationHours son nil salvo en approved.
type AccessRequest struct {
	ID string

	DoctorID          string
	PatientID         string
	PatientHealthCard string

	Reasons []string
	Status  Status

	CreatedAt  time.Time
	DecisionAt *time.Time

	AccessType    *AccessType
	Permissions   *Permissions
	DurationHours *int
}

func (r AccessRequest) Decided() bool {
	return r.Status != StatusPending
}

// Summary es la vista del paciente: incluye el nombre del médico.
type Summary struct {
	AccessRequest
	DoctorName string
}
