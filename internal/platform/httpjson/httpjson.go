// Package httpjson reúne los helpers de request/response JSON que antes
// estaban duplicados en cada handler de dominio.
package httpjson

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var (
	ErrEmptyBody   = errors.New("empty body")
	ErrInvalidJSON = errors.New("invalid json")
)

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

// Write serializa v como JSON con el status dado.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error responde {"error": msg}, el formato que consume el frontend.
func Error(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorResponse{Error: msg})
}

// Decode lee el body JSON en dst y valida los tags `validate`.
// Un body vacío se trata como "{}" para que la validación decida qué falta.
func Decode(r *http.Request, dst any) error {
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return ErrInvalidJSON
		}
	}
	return Validate(dst)
}

// Validate corre go-playground/validator sobre un struct.
func Validate(v any) error {
	return validate.Struct(v)
}
