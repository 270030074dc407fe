package documents

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"health-record-sharing/internal/domain/identity"
	"health-record-sharing/internal/domain/visibility"
	"health-record-sharing/internal/platform/httpjson"
	"health-record-sharing/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// PatientLookup evita depender del service completo de identity.
type PatientLookup interface {
	FindPatientByID(ctx context.Context, id string) (identity.User, error)
}

// ViewGate es el subconjunto del Visibility Gate que usan estos handlers.
type ViewGate interface {
	CanView(ctx context.Context, doctorID, patientHealthCard string) (visibility.Decision, error)
	SharingSummary(ctx context.Context, patientID string) (string, error)
}

type Deps struct {
	Patients PatientLookup
	Gate     ViewGate
	Log      logger.Logger

	// MaxUploadBytes limita el multipart; <= 0 usa 32MB.
	MaxUploadBytes int64
}

func RegisterRoutes(r chi.Router, svc *Service, deps Deps) {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 32 << 20
	}

	r.Get("/api/patient/documents", listPatientDocumentsHandler(svc, deps))
	r.Post("/api/documents/upload", uploadDocumentHandler(svc, deps))
	r.Get("/api/doctor/documents", listDoctorDocumentsHandler(svc, deps))
}

type documentResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	StoredFileName string `json:"storedFileName"`
	OwnerPatientID string `json:"ownerPatientId"`
	UploadedByID   string `json:"uploadedById"`
	UploadedByName string `json:"uploadedByName"`
	UploadDate     string `json:"uploadDate"`
	URL            string `json:"url"`
}

type documentListItem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UploadedByName string `json:"uploadedByName"`
	UploadDate     string `json:"uploadDate"`
	URL            string `json:"url"`
}

type patientDocumentListItem struct {
	documentListItem
	SharingSummary string `json:"sharingSummary"`
}

// listPatientDocumentsHandler godoc
// @Summary Documentos del paciente
// @Description Lista los documentos del paciente con un resumen de con quién están compartidos.
// @Tags documents
// @Produce json
// @Param patientId query string true "ID del paciente"
// @Success 200 {array} patientDocumentListItem
// @Failure 400 {object} httpjson.errorResponse "patientId is required"
// @Failure 404 {object} httpjson.errorResponse "Patient not found"
// @Router /api/patient/documents [get]
func listPatientDocumentsHandler(svc *Service, deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := strings.TrimSpace(r.URL.Query().Get("patientId"))
		if patientID == "" {
			httpjson.Error(w, http.StatusBadRequest, "patientId is required")
			return
		}

		patient, err := deps.Patients.FindPatientByID(r.Context(), patientID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				httpjson.Error(w, http.StatusNotFound, "Patient not found")
				return
			}
			internalError(w, deps.Log, "find patient", err)
			return
		}

		docs, err := svc.ListForPatient(r.Context(), patient.ID)
		if err != nil {
			internalError(w, deps.Log, "list patient documents", err)
			return
		}

		summary, err := deps.Gate.SharingSummary(r.Context(), patient.ID)
		if err != nil {
			internalError(w, deps.Log, "sharing summary", err)
			return
		}

		out := make([]patientDocumentListItem, 0, len(docs))
		for _, d := range docs {
			out = append(out, patientDocumentListItem{
				documentListItem: toListItem(d),
				SharingSummary:   summary,
			})
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// uploadDocumentHandler godoc
// @Summary Subir documento
// @Description Sube un archivo para el paciente dueño de la health card. Lo puede subir el paciente o cualquier médico que conozca la health card.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Archivo"
// @Param ownerHealthCard formData string true "Health card del paciente dueño"
// @Param uploadedById formData string true "ID de quien sube"
// @Success 200 {object} documentResponse
// @Failure 400 {object} httpjson.errorResponse "archivo o campos faltantes / health card desconocida"
// @Router /api/documents/upload [post]
func uploadDocumentHandler(svc *Service, deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, deps.MaxUploadBytes)
		if err := r.ParseMultipartForm(deps.MaxUploadBytes); err != nil {
			httpjson.Error(w, http.StatusBadRequest, "File is required")
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			httpjson.Error(w, http.StatusBadRequest, "File is required")
			return
		}
		defer file.Close()

		ownerCard := strings.TrimSpace(r.FormValue("ownerHealthCard"))
		uploaderID := strings.TrimSpace(r.FormValue("uploadedById"))
		if ownerCard == "" || uploaderID == "" {
			httpjson.Error(w, http.StatusBadRequest, "ownerHealthCard and uploadedById are required")
			return
		}

		d, err := svc.Upload(r.Context(), UploadInput{
			File:            file,
			FileName:        header.Filename,
			Size:            header.Size,
			ContentType:     header.Header.Get("Content-Type"),
			OwnerHealthCard: ownerCard,
			UploadedByID:    uploaderID,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrUnknownHealthCard):
				httpjson.Error(w, http.StatusBadRequest, "No patient found with that health card")
			case errors.Is(err, ErrInvalidInput):
				httpjson.Error(w, http.StatusBadRequest, "File is required")
			default:
				internalError(w, deps.Log, "upload document", err)
			}
			return
		}

		deps.Log.Info("document uploaded", map[string]any{
			"document_id":  d.ID,
			"owner_id":     d.OwnerPatientID,
			"uploaded_by":  d.UploadedByID,
			"stored_under": d.StoredLocation,
		})
		httpjson.Write(w, http.StatusOK, toDocumentResponse(d))
	}
}

// listDoctorDocumentsHandler godoc
// @Summary Documentos visibles para el médico
// @Description Lista los documentos del paciente si el médico tiene al menos un access request aprobado. La visibilidad es binaria: los flags de permisos no filtran documentos.
// @Tags documents
// @Produce json
// @Param doctorId query string true "ID del médico"
// @Param patientHealthCard query string true "Health card del paciente"
// @Success 200 {array} documentListItem
// @Failure 400 {object} httpjson.errorResponse "doctorId and patientHealthCard are required"
// @Failure 403 {object} httpjson.errorResponse "No approved access for this patient"
// @Failure 404 {object} httpjson.errorResponse "Doctor not found / Patient not found"
// @Router /api/doctor/documents [get]
func listDoctorDocumentsHandler(svc *Service, deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		doctorID := strings.TrimSpace(q.Get("doctorId"))
		card := strings.TrimSpace(q.Get("patientHealthCard"))
		if doctorID == "" || card == "" {
			httpjson.Error(w, http.StatusBadRequest, "doctorId and patientHealthCard are required")
			return
		}

		decision, err := deps.Gate.CanView(r.Context(), doctorID, card)
		if err != nil {
			switch {
			case errors.Is(err, visibility.ErrDoctorNotFound):
				httpjson.Error(w, http.StatusNotFound, "Doctor not found")
			case errors.Is(err, visibility.ErrPatientNotFound):
				httpjson.Error(w, http.StatusNotFound, "Patient not found")
			case errors.Is(err, visibility.ErrForbidden):
				httpjson.Error(w, http.StatusForbidden, decision.Reason)
			default:
				internalError(w, deps.Log, "visibility check", err)
			}
			return
		}

		docs, err := svc.ListForPatient(r.Context(), decision.Patient.ID)
		if err != nil {
			internalError(w, deps.Log, "list doctor documents", err)
			return
		}

		out := make([]documentListItem, 0, len(docs))
		for _, d := range docs {
			out = append(out, toListItem(d))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

func toListItem(d Document) documentListItem {
	return documentListItem{
		ID:             d.ID,
		Name:           d.Name,
		UploadedByName: d.UploadedByName,
		UploadDate:     d.UploadDate,
		URL:            d.URL,
	}
}

func toDocumentResponse(d Document) documentResponse {
	return documentResponse{
		ID:             d.ID,
		Name:           d.Name,
		StoredFileName: d.StoredLocation,
		OwnerPatientID: d.OwnerPatientID,
		UploadedByID:   d.UploadedByID,
		UploadedByName: d.UploadedByName,
		UploadDate:     d.UploadDate,
		URL:            d.URL,
	}
}

func internalError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	log.Error(op+" failed", map[string]any{"err": err})
	httpjson.Error(w, http.StatusInternalServerError, "internal error")
}
