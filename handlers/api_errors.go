package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
	// Field names the request field a validation error refers to.
	Field string `json:"field,omitempty"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	writeAPIErrors(w, httpStatus, []APIErrorDetail{{Code: code, Detail: detail}})
}

// writeValidationErrors reports one error per invalid field, ordered by field name.
func writeValidationErrors(w http.ResponseWriter, verr *ValidationError) {
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	details := make([]APIErrorDetail, len(fields))
	for i, f := range fields {
		details[i] = APIErrorDetail{Code: "invalid_input", Field: f, Detail: f + " " + verr.Fields[f]}
	}
	writeAPIErrors(w, http.StatusBadRequest, details)
}

func writeAPIErrors(w http.ResponseWriter, httpStatus int, details []APIErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	status := strconv.Itoa(httpStatus)
	for i := range details {
		details[i].Status = status
	}
	_ = json.NewEncoder(w).Encode(APIErrorResponse{Errors: details})
}
