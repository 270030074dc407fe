package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"health-record-sharing/internal/domain/documents"
)

// DocumentRepo es append-only: no hay Update ni Delete.
type DocumentRepo struct {
	mu   sync.RWMutex
	docs []documents.Document
	ids  map[string]struct{}
}

func NewDocumentRepo() *DocumentRepo {
	return &DocumentRepo{
		ids: make(map[string]struct{}),
	}
}

func (r *DocumentRepo) Record(ctx context.Context, d documents.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("document id required")
	}
	if _, exists := r.ids[d.ID]; exists {
		return errors.New("document already exists")
	}
	r.ids[d.ID] = struct{}{}
	r.docs = append(r.docs, d)
	return nil
}

func (r *DocumentRepo) ListForPatient(ctx context.Context, patientID string) ([]documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]documents.Document, 0)
	for _, d := range r.docs {
		if d.OwnerPatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DocumentRepo) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = nil
	r.ids = make(map[string]struct{})
}
