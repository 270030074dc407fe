package identity

import (
	"errors"
	"net/http"
	"time"

	"health-record-sharing/internal/platform/httpjson"
	"health-record-sharing/internal/platform/logger"
	"health-record-sharing/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

const tokenTTL = 24 * time.Hour

// TokenIssuer firma un token para el usuario logueado. Es opcional (nil => sin token).
type TokenIssuer interface {
	Sign(c auth.Claims, ttl time.Duration) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, issuer TokenIssuer, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Post("/api/login", loginHandler(svc, issuer, log))
}

type loginRequest struct {
	Role       string `json:"role" validate:"required"`
	Name       string `json:"name"`
	Email      string `json:"email" validate:"required"`
	HealthCard string `json:"healthCard"`
}

// userResponse: healthCard solo aparece para pacientes (aunque esté vacía).
type userResponse struct {
	ID         string  `json:"id"`
	Role       Role    `json:"role"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	HealthCard *string `json:"healthCard,omitempty"`
	Token      string  `json:"token,omitempty"`
}

// loginHandler godoc
// @Summary Resolver o crear usuario
// @Description Login de demo: busca el usuario por (role, email) sin distinguir mayúsculas y lo crea si no existe. No hay autenticación; la identidad la declara el cliente. Con JWT_SECRET la respuesta incluye un token.
// @Tags identity
// @Accept json
// @Produce json
// @Param payload body loginRequest true "role: patient|doctor"
// @Success 200 {object} userResponse
// @Failure 400 {object} httpjson.errorResponse "role and email are required"
// @Router /api/login [post]
func loginHandler(svc *Service, issuer TokenIssuer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpjson.Decode(r, &req); err != nil {
			httpjson.Error(w, http.StatusBadRequest, "role and email are required")
			return
		}

		u, err := svc.ResolveOrCreate(r.Context(), ResolveInput{
			Role:       Role(req.Role),
			Name:       req.Name,
			Email:      req.Email,
			HealthCard: req.HealthCard,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				httpjson.Error(w, http.StatusBadRequest, "role must be patient or doctor and email is required")
				return
			}
			log.Error("login failed", map[string]any{"err": err})
			httpjson.Error(w, http.StatusInternalServerError, "Could not create user")
			return
		}

		out := toUserResponse(u)
		if issuer != nil {
			token, err := issuer.Sign(auth.Claims{UserID: u.ID, Role: string(u.Role), Email: u.Email}, tokenTTL)
			if err != nil {
				log.Error("sign token failed", map[string]any{"user_id": u.ID, "err": err})
				httpjson.Error(w, http.StatusInternalServerError, "internal error")
				return
			}
			out.Token = token
		}

		httpjson.Write(w, http.StatusOK, out)
	}
}

func toUserResponse(u User) userResponse {
	out := userResponse{
		ID:    u.ID,
		Role:  u.Role,
		Name:  u.Name,
		Email: u.Email,
	}
	if u.Role == RolePatient {
		card := u.HealthCard
		out.HealthCard = &card
	}
	return out
}
