package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"health-record-sharing/internal/domain/identity"
)

type UserRepo struct {
	mu    sync.RWMutex
	byID  map[string]identity.User
	order []string // orden de alta
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID: make(map[string]identity.User),
	}
}

func (r *UserRepo) Create(ctx context.Context, u identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	r.byID[u.ID] = u
	r.order = append(r.order, u.ID)
	return nil
}

func (r *UserRepo) Update(ctx context.Context, u identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[u.ID]; !exists {
		return identity.ErrNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return identity.User{}, identity.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) FindByRoleEmail(ctx context.Context, role identity.Role, email string) (identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		u := r.byID[id]
		if u.Role == role && strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return identity.User{}, identity.ErrNotFound
}

func (r *UserRepo) FindPatientByHealthCard(ctx context.Context, healthCard string) (identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		u := r.byID[id]
		if u.Role == identity.RolePatient && u.HealthCard != "" && u.HealthCard == healthCard {
			return u, nil
		}
	}
	return identity.User{}, identity.ErrNotFound
}

// Reset vacía el repo (tests).
func (r *UserRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[string]identity.User)
	r.order = nil
}
