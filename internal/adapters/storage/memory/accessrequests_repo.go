package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"health-record-sharing/internal/domain/accessrequests"
)

type AccessRequestRepo struct {
	mu    sync.RWMutex
	byID  map[string]accessrequests.AccessRequest
	order []string // orden de alta; los listados no se re-ordenan
}

func NewAccessRequestRepo() *AccessRequestRepo {
	return &AccessRequestRepo{
		byID: make(map[string]accessrequests.AccessRequest),
	}
}

func (r *AccessRequestRepo) Create(ctx context.Context, ar accessrequests.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(ar.ID) == "" {
		return errors.New("access request id required")
	}
	if _, exists := r.byID[ar.ID]; exists {
		return errors.New("access request already exists")
	}
	r.byID[ar.ID] = clone(ar)
	r.order = append(r.order, ar.ID)
	return nil
}

func (r *AccessRequestRepo) GetByID(ctx context.Context, id string) (accessrequests.AccessRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ar, ok := r.byID[id]
	if !ok {
		return accessrequests.AccessRequest{}, accessrequests.ErrNotFound
	}
	return clone(ar), nil
}

// Decide chequea pending y escribe bajo el mismo lock: dos respond
// concurrentes sobre el mismo id no pueden ganar ambos.
func (r *AccessRequestRepo) Decide(ctx context.Context, ar accessrequests.AccessRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[ar.ID]
	if !ok {
		return accessrequests.ErrNotFound
	}
	if current.Status != accessrequests.StatusPending {
		return accessrequests.ErrAlreadyDecided
	}

	current.Status = ar.Status
	current.DecisionAt = ar.DecisionAt
	current.AccessType = ar.AccessType
	current.Permissions = ar.Permissions
	current.DurationHours = ar.DurationHours
	r.byID[ar.ID] = clone(current)
	return nil
}

func (r *AccessRequestRepo) ListByPatient(ctx context.Context, patientID string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool { return ar.PatientID == patientID }), nil
}

func (r *AccessRequestRepo) ListByDoctor(ctx context.Context, doctorID string) ([]accessrequests.AccessRequest, error) {
	return r.list(func(ar accessrequests.AccessRequest) bool { return ar.DoctorID == doctorID }), nil
}

func (r *AccessRequestRepo) list(match func(accessrequests.AccessRequest) bool) []accessrequests.AccessRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]accessrequests.AccessRequest, 0)
	for _, id := range r.order {
		if ar := r.byID[id]; match(ar) {
			out = append(out, clone(ar))
		}
	}
	return out
}

func (r *AccessRequestRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]accessrequests.AccessRequest)
	r.order = nil
}

// clone copia slices y punteros para que nadie mute el estado del repo desde afuera.
func clone(ar accessrequests.AccessRequest) accessrequests.AccessRequest {
	if ar.Reasons != nil {
		ar.Reasons = append([]string(nil), ar.Reasons...)
	}
	if ar.DecisionAt != nil {
		t := *ar.DecisionAt
		ar.DecisionAt = &t
	}
	if ar.AccessType != nil {
		v := *ar.AccessType
		ar.AccessType = &v
	}
	if ar.Permissions != nil {
		p := *ar.Permissions
		ar.Permissions = &p
	}
	if ar.DurationHours != nil {
		h := *ar.DurationHours
		ar.DurationHours = &h
	}
	return ar
}
