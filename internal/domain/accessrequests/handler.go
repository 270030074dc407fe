package accessrequests

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"health-record-sharing/internal/domain/identity"
	"health-record-sharing/internal/middleware"
	"health-record-sharing/internal/platform/httpjson"
	"health-record-sharing/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// PatientLookup evita importar el service completo de identity.
type PatientLookup interface {
	FindPatientByID(ctx context.Context, id string) (identity.User, error)
}

func RegisterRoutes(r chi.Router, svc *Service, patients PatientLookup, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}

	// Médico
	r.Route("/api/doctor/requests", func(dr chi.Router) {
		dr.Post("/", createRequestHandler(svc, log))
		dr.Get("/", listDoctorRequestsHandler(svc, log))
	})

	// Paciente
	r.Route("/api/patient/requests", func(pr chi.Router) {
		pr.Get("/", listPatientRequestsHandler(svc, patients, log))
		pr.Post("/{requestID}/respond", respondHandler(svc, log))
	})
}

type createRequestRequest struct {
	DoctorID          string   `json:"doctorId" validate:"required"`
	PatientHealthCard string   `json:"patientHealthCard" validate:"required"`
	Reasons           []string `json:"reasons"`
}

type respondRequest struct {
	Approve       bool         `json:"approve"`
	AccessType    *AccessType  `json:"accessType"`
	Permissions   *Permissions `json:"permissions"`
	DurationHours *int         `json:"durationHours"`
}

// accessRequestResponse: los campos del grant van como null mientras no esté aprobado.
type accessRequestResponse struct {
	ID                string       `json:"id"`
	DoctorID          string       `json:"doctorId"`
	PatientID         string       `json:"patientId"`
	PatientHealthCard string       `json:"patientHealthCard"`
	Reasons           []string     `json:"reasons"`
	Status            Status       `json:"status"`
	CreatedAt         time.Time    `json:"createdAt"`
	DecisionAt        *time.Time   `json:"decisionAt,omitempty"`
	AccessType        *AccessType  `json:"accessType"`
	Permissions       *Permissions `json:"permissions"`
	DurationHours     *int         `json:"durationHours"`
}

type requestSummaryResponse struct {
	ID            string       `json:"id"`
	DoctorName    string       `json:"doctorName"`
	Status        Status       `json:"status"`
	Reasons       []string     `json:"reasons"`
	CreatedAt     time.Time    `json:"createdAt"`
	DecisionAt    *time.Time   `json:"decisionAt,omitempty"`
	AccessType    *AccessType  `json:"accessType"`
	Permissions   *Permissions `json:"permissions"`
	DurationHours *int         `json:"durationHours"`
}

// createRequestHandler godoc
// @Summary Pedir acceso a un paciente
// @Description El médico pide acceso a los documentos del paciente identificado por health card. Siempre crea un pedido nuevo en estado pending.
// @Tags access-requests
// @Accept json
// @Produce json
// @Param payload body createRequestRequest true "reasons: tags libres"
// @Success 200 {object} accessRequestResponse
// @Failure 400 {object} httpjson.errorResponse "doctorId and patientHealthCard are required / Patient with that health card does not exist yet"
// @Failure 404 {object} httpjson.errorResponse "Doctor not found"
// @Router /api/doctor/requests [post]
func createRequestHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequestRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, "doctorId and patientHealthCard are required")
			return
		}

		ar, err := svc.Create(r.Context(), CreateInput{
			DoctorID:          req.DoctorID,
			PatientHealthCard: req.PatientHealthCard,
			Reasons:           req.Reasons,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				httpjson.Error(w, http.StatusBadRequest, "doctorId and patientHealthCard are required")
			case errors.Is(err, ErrDoctorNotFound):
				httpjson.Error(w, http.StatusNotFound, "Doctor not found")
			case errors.Is(err, ErrPatientNotFound):
				httpjson.Error(w, http.StatusBadRequest, "Patient with that health card does not exist yet")
			default:
				internalError(w, log, "create access request", err)
			}
			return
		}

		log.Info("access request created", map[string]any{
			"request_id": ar.ID,
			"doctor_id":  ar.DoctorID,
			"patient_id": ar.PatientID,
		})
		httpjson.Write(w, http.StatusOK, toResponse(ar))
	}
}

// listDoctorRequestsHandler godoc
// @Summary Pedidos del médico
// @Tags access-requests
// @Produce json
// @Param doctorId query string true "ID del médico"
// @Success 200 {array} accessRequestResponse
// @Failure 400 {object} httpjson.errorResponse "doctorId is required"
// @Failure 404 {object} httpjson.errorResponse "Doctor not found"
// @Router /api/doctor/requests [get]
func listDoctorRequestsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID := strings.TrimSpace(r.URL.Query().Get("doctorId"))
		if doctorID == "" {
			httpjson.Error(w, http.StatusBadRequest, "doctorId is required")
			return
		}

		items, err := svc.ListForDoctor(r.Context(), doctorID)
		if err != nil {
			if errors.Is(err, ErrDoctorNotFound) {
				httpjson.Error(w, http.StatusNotFound, "Doctor not found")
				return
			}
			internalError(w, log, "list doctor requests", err)
			return
		}

		out := make([]accessRequestResponse, 0, len(items))
		for _, ar := range items {
			out = append(out, toResponse(ar))
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// listPatientRequestsHandler godoc
// @Summary Pedidos recibidos por el paciente
// @Description En orden de llegada, con el nombre del médico.
// @Tags access-requests
// @Produce json
// @Param patientId query string true "ID del paciente"
// @Success 200 {array} requestSummaryResponse
// @Failure 400 {object} httpjson.errorResponse "patientId is required"
// @Failure 404 {object} httpjson.errorResponse "Patient not found"
// @Router /api/patient/requests [get]
func listPatientRequestsHandler(svc *Service, patients PatientLookup, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID := strings.TrimSpace(r.URL.Query().Get("patientId"))
		if patientID == "" {
			httpjson.Error(w, http.StatusBadRequest, "patientId is required")
			return
		}

		patient, err := patients.FindPatientByID(r.Context(), patientID)
		if err != nil {
			if errors.Is(err, identity.ErrNotFound) {
				httpjson.Error(w, http.StatusNotFound, "Patient not found")
				return
			}
			internalError(w, log, "find patient", err)
			return
		}

		items, err := svc.ListForPatient(r.Context(), patient.ID)
		if err != nil {
			internalError(w, log, "list patient requests", err)
			return
		}

		out := make([]requestSummaryResponse, 0, len(items))
		for _, s := range items {
			out = append(out, requestSummaryResponse{
				ID:            s.ID,
				DoctorName:    s.DoctorName,
				Status:        s.Status,
				Reasons:       nonNil(s.Reasons),
				CreatedAt:     s.CreatedAt,
				DecisionAt:    s.DecisionAt,
				AccessType:    s.AccessType,
				Permissions:   s.Permissions,
				DurationHours: s.DurationHours,
			})
		}
		httpjson.Write(w, http.StatusOK, out)
	}
}

// respondHandler godoc
// @Summary Aprobar o rechazar un pedido
// @Description approve=false rechaza (terminal). approve=true aprueba con defaults: accessType=temporary, durationHours=48, permissions={view,download,annotate}. No se valida que quien responde sea el paciente del pedido.
// @Tags access-requests
// @Accept json
// @Produce json
// @Param requestID path string true "ID del pedido"
// @Param payload body respondRequest true "Decisión"
// @Success 200 {object} accessRequestResponse
// @Failure 400 {object} httpjson.errorResponse "accessType inválido"
// @Failure 404 {object} httpjson.errorResponse "Request not found"
// @Failure 409 {object} httpjson.errorResponse "Request already decided"
// @Router /api/patient/requests/{requestID}/respond [post]
func respondHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := chi.URLParam(r, "requestID")

		var req respondRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		ar, err := svc.Respond(r.Context(), requestID, RespondInput{
			Approve:       req.Approve,
			AccessType:    req.AccessType,
			Permissions:   req.Permissions,
			DurationHours: req.DurationHours,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				httpjson.Error(w, http.StatusNotFound, "Request not found")
			case errors.Is(err, ErrAlreadyDecided):
				httpjson.Error(w, http.StatusConflict, "Request already "+string(ar.Status))
			case errors.Is(err, ErrInvalidInput):
				httpjson.Error(w, http.StatusBadRequest, "accessType must be temporary or permanent and durationHours must not be negative")
			default:
				internalError(w, log, "respond access request", err)
			}
			return
		}

		fields := map[string]any{
			"request_id": ar.ID,
			"status":     string(ar.Status),
		}
		// Identidad declarada (si vino): solo para auditoría, no se exige.
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			fields["asserted_user_id"] = claims.UserID
		}
		log.Info("access request decided", fields)

		httpjson.Write(w, http.StatusOK, toResponse(ar))
	}
}

func toResponse(ar AccessRequest) accessRequestResponse {
	return accessRequestResponse{
		ID:                ar.ID,
		DoctorID:          ar.DoctorID,
		PatientID:         ar.PatientID,
		PatientHealthCard: ar.PatientHealthCard,
		Reasons:           nonNil(ar.Reasons),
		Status:            ar.Status,
		CreatedAt:         ar.CreatedAt,
		DecisionAt:        ar.DecisionAt,
		AccessType:        ar.AccessType,
		Permissions:       ar.Permissions,
		DurationHours:     ar.DurationHours,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func internalError(w http.ResponseWriter, log logger.Logger, op string, err error) {
	log.Error(op+" failed", map[string]any{"err": err})
	httpjson.Error(w, http.StatusInternalServerError, "internal error")
}
