package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ayoubd/filevault"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the response matching the error taxonomy. Raw store
// and driver errors never reach the caller; everything unmapped is a 500.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	var missing *filevault.MissingFieldError
	if errors.As(err, &missing) {
		WriteError(w, http.StatusBadRequest, "missing_field", "Missing "+missing.Field)
		return
	}

	var invalidParent *filevault.InvalidParentError
	if errors.As(err, &invalidParent) {
		WriteError(w, http.StatusBadRequest, "invalid_parent", invalidParent.Reason)
		return
	}

	var blobErr *filevault.BlobWriteError
	if errors.As(err, &blobErr) {
		// The committed identifier is surfaced so an operator can reconcile
		// the orphaned metadata record.
		WriteError(w, http.StatusInternalServerError, "blob_failure", "Blob write failed for node "+blobErr.NodeID.String())
		return
	}

	if errors.Is(err, filevault.ErrBadRequest) {
		WriteError(w, http.StatusBadRequest, "bad_request", "Bad request")
		return
	}

	if errors.Is(err, filevault.ErrUnauthenticated) {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	if errors.Is(err, filevault.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}

	if errors.Is(err, filevault.ErrStore) {
		WriteError(w, http.StatusInternalServerError, "store_failure", "Store operation failed")
		return
	}

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
