// Package apierr define el envelope de error HTTP y los helpers JSON
// compartidos por handlers y middlewares.
//
// Forma en el wire:
//
//	{"error": {"message": "...", "code": "...", "errors": [{"field","message"}]}}
//
// code y errors son opcionales; errors sólo aparece en fallas de
// validación (400).
package apierr

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dropDatabas3/clusterdesk/internal/validation"
)

type errorBody struct {
	Message string                  `json:"message"`
	Code    string                  `json:"code,omitempty"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
}

type envelope struct {
	Error errorBody `json:"error"`
}

// WriteJSON: respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError escribe el envelope con un mensaje human-readable.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, envelope{Error: errorBody{Message: message}})
}

// WriteErrorCode es WriteError con un code estable para el cliente.
func WriteErrorCode(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, envelope{Error: errorBody{Message: message, Code: code}})
}

// WriteValidation escribe un 400 con el array de errores por campo.
func WriteValidation(w http.ResponseWriter, errs []validation.FieldError) {
	WriteJSON(w, http.StatusBadRequest, envelope{Error: errorBody{
		Message: "Validation failed",
		Errors:  errs,
	}})
}

// ReadJSON decodifica el body de forma tolerante (NO falla por campos
// desconocidos). Valida Content-Type y limita el body a 1MB. Devuelve
// false si ya escribió la respuesta de error.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		WriteError(w, http.StatusBadRequest, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && err != io.EOF {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}
