package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/logging"
)

// Stable error codes carried in every error body.
const (
	CodeMissing             = "missing"
	CodeInvalid             = "invalid"
	CodeExpired             = "expired"
	CodeAlreadyExists       = "already_exists"
	CodeConflict            = "conflict"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeNotFound            = "not_found"
	CodeValidationFailed    = "validation_failed"
	CodeArtifactStore       = "artifact_store_failure"
	CodeUpstreamUnavailable = "upstream_unavailable"
	CodeUpstreamError       = "upstream_error"
	CodeInternal            = "internal"
)

type errorResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	Field          string `json:"field,omitempty"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}

// classify maps an error to its status and body. Internal detail never
// reaches the body.
func classify(err error) (int, errorResponse) {
	var ve *common.ValidationError
	var ue *common.UpstreamStatusError

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{Error: ve.Error(), Code: CodeValidationFailed, Field: ve.Field}
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: "Invalid request.", Code: CodeValidationFailed}
	case errors.Is(err, common.ErrAuthMissing):
		return http.StatusUnauthorized, errorResponse{Error: "Authorization token missing.", Code: CodeMissing}
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, errorResponse{Error: "Token already expired.", Code: CodeExpired}
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Error: "Token not valid.", Code: CodeInvalid}
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusUnauthorized, errorResponse{Error: "User already exists.", Code: CodeAlreadyExists}
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, errorResponse{Error: "Product already exists.", Code: CodeConflict}
	case errors.Is(err, common.ErrInvalidCredential):
		return http.StatusUnauthorized, errorResponse{Error: "Invalid email or password.", Code: CodeInvalidCredentials}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, errorResponse{Error: "Not found.", Code: CodeNotFound}
	case errors.Is(err, common.ErrArtifactStore):
		return http.StatusInternalServerError, errorResponse{Error: "Failed to store image.", Code: CodeArtifactStore}
	case errors.Is(err, common.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: "Prediction service unavailable.", Code: CodeUpstreamUnavailable}
	case errors.As(err, &ue):
		return http.StatusBadGateway, errorResponse{Error: "Prediction service error.", Code: CodeUpstreamError, UpstreamStatus: ue.StatusCode}
	case errors.Is(err, common.ErrUpstreamError):
		return http.StatusBadGateway, errorResponse{Error: "Prediction service error.", Code: CodeUpstreamError}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Internal Server Error", Code: CodeInternal}
	}
}

func respondWithError(w http.ResponseWriter, r *http.Request, l logging.Logger, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		l.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	respondWithJSON(w, status, body)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"Internal Server Error","code":"internal"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
