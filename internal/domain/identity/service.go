package identity

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time

	// serializa find-or-create para que dos logins simultáneos no creen duplicados
	mu sync.Mutex
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type ResolveInput struct {
	Role       Role
	Name       string
	Email      string
	HealthCard string
}

// ResolveOrCreate busca el usuario por (role, email) y lo crea si no existe.
// Para pacientes, completa la health card una sola vez si venía vacía.
func (s *Service) ResolveOrCreate(ctx context.Context, in ResolveInput) (User, error) {
	role := Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	email := strings.TrimSpace(in.Email)
	card := strings.TrimSpace(in.HealthCard)

	if role == "" || email == "" {
		return User{}, ErrInvalidInput
	}
	if !role.Valid() {
		return User{}, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.FindByRoleEmail(ctx, role, email)
	switch {
	case err == nil:
		if role == RolePatient && card != "" && existing.HealthCard == "" {
			existing.HealthCard = card
			if err := s.repo.Update(ctx, existing); err != nil {
				return User{}, err
			}
		}
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return User{}, err
	}

	u := User{
		ID:        uuid.NewString(),
		Role:      role,
		Name:      displayName(role, in.Name),
		Email:     email,
		CreatedAt: s.now(),
	}
	if role == RolePatient {
		u.HealthCard = card
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) FindPatientByHealthCard(ctx context.Context, healthCard string) (User, error) {
	healthCard = strings.TrimSpace(healthCard)
	if healthCard == "" {
		return User{}, ErrNotFound
	}
	return s.repo.FindPatientByHealthCard(ctx, healthCard)
}

func (s *Service) FindDoctorByID(ctx context.Context, id string) (User, error) {
	return s.findByIDAndRole(ctx, id, RoleDoctor)
}

func (s *Service) FindPatientByID(ctx context.Context, id string) (User, error) {
	return s.findByIDAndRole(ctx, id, RolePatient)
}

func (s *Service) findByIDAndRole(ctx context.Context, id string, role Role) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrNotFound
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.Role != role {
		return User{}, ErrNotFound
	}
	return u, nil
}

func displayName(role Role, name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if role == RoleDoctor {
		return "Doctor"
	}
	return "Patient"
}
