package accessrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"health-record-sharing/internal/domain/identity"
	"health-record-sharing/internal/platform/logger"
	"health-record-sharing/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrAlreadyDecided = errors.New("request already decided")

	ErrDoctorNotFound  = fmt.Errorf("doctor %w", ErrNotFound)
	ErrPatientNotFound = fmt.Errorf("patient %w", ErrNotFound)
)

const unknownDoctorName = "Doctor"

// Directory: el engine solo lee usuarios, nunca los crea.
type Directory interface {
	FindDoctorByID(ctx context.Context, id string) (identity.User, error)
	FindPatientByHealthCard(ctx context.Context, healthCard string) (identity.User, error)
}

type Service struct {
	repo  Repository
	users Directory
	pub   notify.Publisher
	log   logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, users Directory, pub notify.Publisher, log logger.Logger) *Service {
	if pub == nil {
		pub = notify.Nop{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:  repo,
		users: users,
		pub:   pub,
		log:   log,
		now:   time.Now,
	}
}

type CreateInput struct {
	DoctorID          string
	PatientHealthCard string
	Reasons           []string
}

// Create registra un pedido nuevo en pending. Nunca se fusiona con pedidos
// existentes del mismo médico para el mismo paciente.
func (s *Service) Create(ctx context.Context, in CreateInput) (AccessRequest, error) {
	doctorID := strings.TrimSpace(in.DoctorID)
	card := strings.TrimSpace(in.PatientHealthCard)
	if doctorID == "" || card == "" {
		return AccessRequest{}, ErrInvalidInput
	}

	doctor, err := s.users.FindDoctorByID(ctx, doctorID)
	if err != nil {
		return AccessRequest{}, lookupErr(err, ErrDoctorNotFound)
	}
	patient, err := s.users.FindPatientByHealthCard(ctx, card)
	if err != nil {
		return AccessRequest{}, lookupErr(err, ErrPatientNotFound)
	}

	req := AccessRequest{
		ID:                uuid.NewString(),
		DoctorID:          doctor.ID,
		PatientID:         patient.ID,
		PatientHealthCard: card,
		Reasons:           normalizeReasons(in.Reasons),
		Status:            StatusPending,
		CreatedAt:         s.now(),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return AccessRequest{}, err
	}

	s.publish(ctx, notify.EventAccessRequestCreated, req)
	return req, nil
}

type RespondInput struct {
	Approve bool

	// Opcionales; solo se usan al aprobar.
	AccessType    *AccessType
	Permissions   *Permissions
	DurationHours *int
}

// Respond decide un pedido pending. Si ya estaba decidido devuelve el registro
// guardado sin tocarlo, junto con ErrAlreadyDecided.
// No valida que quien responde sea el paciente dueño del pedido.
func (s *Service) Respond(ctx context.Context, id string, in RespondInput) (AccessRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return AccessRequest{}, ErrNotFound
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return AccessRequest{}, err
	}
	if current.Decided() {
		return current, ErrAlreadyDecided
	}

	next, err := s.applyDecision(current, in)
	if err != nil {
		return AccessRequest{}, err
	}

	if err := s.repo.Decide(ctx, next); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			// otro respond ganó la carrera entre GetByID y Decide
			stored, getErr := s.repo.GetByID(ctx, id)
			if getErr != nil {
				return AccessRequest{}, getErr
			}
			return stored, ErrAlreadyDecided
		}
		return AccessRequest{}, err
	}

	evt := notify.EventAccessRequestDenied
	if next.Status == StatusApproved {
		evt = notify.EventAccessRequestApproved
	}
	s.publish(ctx, evt, next)
	return next, nil
}

func (s *Service) applyDecision(r AccessRequest, in RespondInput) (AccessRequest, error) {
	now := s.now()
	r.DecisionAt = &now

	if !in.Approve {
		r.Status = StatusDenied
		r.AccessType = nil
		r.Permissions = nil
		r.DurationHours = nil
		return r, nil
	}

	accessType := AccessTemporary
	if in.AccessType != nil && *in.AccessType != "" {
		accessType = *in.AccessType
	}
	if !accessType.Valid() {
		return AccessRequest{}, ErrInvalidInput
	}

	perms := DefaultPermissions()
	if in.Permissions != nil {
		perms = *in.Permissions
	}

	var duration *int
	if accessType == AccessTemporary {
		hours := DefaultDurationHours
		if in.DurationHours != nil {
			switch {
			case *in.DurationHours < 0:
				return AccessRequest{}, ErrInvalidInput
			case *in.DurationHours > 0:
				hours = *in.DurationHours
			}
		}
		duration = &hours
	}

	r.Status = StatusApproved
	r.AccessType = &accessType
	r.Permissions = &perms
	r.DurationHours = duration
	return r, nil
}

// ListForPatient devuelve los pedidos en orden de alta con el nombre del médico resuelto.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Summary, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	out := make([]Summary, 0, len(items))
	for _, r := range items {
		name, ok := names[r.DoctorID]
		if !ok {
			name, err = s.doctorName(ctx, r.DoctorID)
			if err != nil {
				return nil, err
			}
			names[r.DoctorID] = name
		}
		out = append(out, Summary{AccessRequest: r, DoctorName: name})
	}
	return out, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]AccessRequest, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.users.FindDoctorByID(ctx, doctorID); err != nil {
		return nil, lookupErr(err, ErrDoctorNotFound)
	}
	return s.repo.ListByDoctor(ctx, doctorID)
}

// ListApproved devuelve los pedidos aprobados para el par (médico, paciente).
func (s *Service) ListApproved(ctx context.Context, doctorID, patientID string) ([]AccessRequest, error) {
	items, err := s.ListApprovedForPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]AccessRequest, 0, len(items))
	for _, r := range items {
		if r.DoctorID == doctorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) ListApprovedForPatient(ctx context.Context, patientID string) ([]AccessRequest, error) {
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]AccessRequest, 0, len(items))
	for _, r := range items {
		if r.Status == StatusApproved {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) doctorName(ctx context.Context, doctorID string) (string, error) {
	d, err := s.users.FindDoctorByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return unknownDoctorName, nil
		}
		return "", err
	}
	if strings.TrimSpace(d.Name) == "" {
		return unknownDoctorName, nil
	}
	return d.Name, nil
}

// publish es best-effort: la transición ya quedó guardada.
func (s *Service) publish(ctx context.Context, t notify.EventType, r AccessRequest) {
	err := s.pub.Publish(ctx, notify.Event{
		Type:       t,
		RequestID:  r.ID,
		DoctorID:   r.DoctorID,
		PatientID:  r.PatientID,
		Status:     string(r.Status),
		OccurredAt: s.now(),
	})
	if err != nil {
		s.log.Warn("publish access request event failed", map[string]any{
			"event":      string(t),
			"request_id": r.ID,
			"err":        err,
		})
	}
}

func lookupErr(err, notFound error) error {
	if errors.Is(err, identity.ErrNotFound) {
		return notFound
	}
	return err
}

// normalizeReasons: trim, sin vacíos, sin duplicados, respeta el primer orden.
// Los tags desconocidos se guardan tal cual.
func normalizeReasons(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		r := strings.TrimSpace(raw)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
