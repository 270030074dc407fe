package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"health-record-sharing/internal/domain/identity"
	"health-record-sharing/internal/ports/blobstore"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnknownHealthCard = errors.New("no patient found with that health card")
)

const unknownUploader = "Unknown"

// Directory es lo único que el store necesita del Identity Directory.
type Directory interface {
	FindPatientByHealthCard(ctx context.Context, healthCard string) (identity.User, error)
	GetByID(ctx context.Context, id string) (identity.User, error)
}

type Service struct {
	repo  Repository
	blobs blobstore.Store
	users Directory
	now   func() time.Time
}

func NewService(repo Repository, blobs blobstore.Store, users Directory) *Service {
	return &Service{
		repo:  repo,
		blobs: blobs,
		users: users,
		now:   time.Now,
	}
}

type UploadInput struct {
	File        io.Reader
	FileName    string
	Size        int64
	ContentType string

	OwnerHealthCard string
	UploadedByID    string
}

// Upload resuelve el dueño por health card, guarda los bytes y registra la metadata.
// No hay chequeo de permisos: cualquiera que conozca la health card puede subir.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	fileName := strings.TrimSpace(in.FileName)
	card := strings.TrimSpace(in.OwnerHealthCard)
	uploaderID := strings.TrimSpace(in.UploadedByID)

	if in.File == nil || fileName == "" {
		return Document{}, ErrInvalidInput
	}
	if card == "" || uploaderID == "" {
		return Document{}, ErrInvalidInput
	}

	owner, err := s.users.FindPatientByHealthCard(ctx, card)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return Document{}, ErrUnknownHealthCard
		}
		return Document{}, err
	}

	uploaderName := unknownUploader
	uploader, err := s.users.GetByID(ctx, uploaderID)
	switch {
	case err == nil:
		uploaderName = uploader.Name
	case !errors.Is(err, identity.ErrNotFound):
		return Document{}, err
	}

	now := s.now()
	key := storedFileName(now, fileName)

	obj, err := s.blobs.Put(ctx, key, in.File, in.Size, in.ContentType)
	if err != nil {
		return Document{}, fmt.Errorf("store file: %w", err)
	}

	d := Document{
		ID:             uuid.NewString(),
		Name:           fileName,
		StoredLocation: obj.Key,
		OwnerPatientID: owner.ID,
		UploadedByID:   uploaderID,
		UploadedByName: uploaderName,
		UploadDate:     now.UTC().Format("2006-01-02"),
		URL:            obj.URL,
		CreatedAt:      now,
	}

	if err := s.repo.Record(ctx, d); err != nil {
		return Document{}, err
	}
	return d, nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Document, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListForPatient(ctx, patientID)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// storedFileName: <unix millis>-<random>-<nombre original sin espacios>
func storedFileName(now time.Time, original string) string {
	safe := whitespaceRun.ReplaceAllString(original, "_")
	return fmt.Sprintf("%d-%d-%s", now.UnixMilli(), rand.Intn(1_000_000_000), safe)
}
