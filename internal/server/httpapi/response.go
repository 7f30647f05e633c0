package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/photogallery/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   *int64 `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service error to its status code. Anything
// untagged is a 500 carrying internalMsg only.
func writeServiceError(w http.ResponseWriter, err error, internalMsg string) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidPayloadFormat):
		writeError(w, http.StatusBadRequest, common.ErrInvalidPayloadFormat.Error())
	case errors.Is(err, common.ErrInvalidFolder):
		writeError(w, http.StatusBadRequest, common.ErrInvalidFolder.Error())
	case errors.Is(err, common.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, common.ErrUnauthenticated.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, common.ErrInvalidCredentials.Error())
	case errors.Is(err, common.ErrInvalidToken):
		writeError(w, http.StatusForbidden, common.ErrInvalidToken.Error())
	case errors.Is(err, common.ErrNotFoundOrForbidden):
		writeError(w, http.StatusNotFound, common.ErrNotFoundOrForbidden.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
	case errors.Is(err, common.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "user with this email already exists")
	case errors.Is(err, common.ErrStorageCleanupFailed):
		writeError(w, http.StatusInternalServerError, common.ErrStorageCleanupFailed.Error())
	default:
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

// decodeJSON reads a size-limited JSON body into dst. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
