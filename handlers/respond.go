package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/camden-git/photodesk/catalog"
	"github.com/camden-git/photodesk/repository"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

// writeError maps command errors onto the API error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationErrors(w, verr)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		WriteAPIError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, repository.ErrUnknownField),
		errors.Is(err, repository.ErrInvalidValue):
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, catalog.ErrExists), errors.Is(err, catalog.ErrInUse):
		WriteAPIError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, catalog.ErrNoFolder):
		WriteAPIError(w, http.StatusConflict, "no_folder", err.Error())
	default:
		log.Printf("Error handling %s %s: %v", r.Method, r.URL.Path, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "The command failed")
	}
}

// decode reads a JSON body into dst and validates its struct tags. It writes
// the error response itself and reports whether the handler may continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Invalid request body: "+err.Error())
		return false
	}
	if err := h.validator.Validate(dst); err != nil {
		writeError(w, r, err)
		return false
	}
	return true
}
