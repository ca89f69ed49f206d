package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"contas/internal/core"
)

// OwnerHeader carries the authenticated user id. Authentication itself
// happens upstream; the API trusts the header.
const OwnerHeader = "X-User-ID"

type ownerHandler func(w http.ResponseWriter, r *http.Request, ownerID string)

// withOwner rejects requests without an owner id before the handler
// runs.
func (s *Server) withOwner(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(OwnerHeader)
		if ownerID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing "+OwnerHeader+" header")
			return
		}
		next(w, r, ownerID)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"path", r.URL.Path, "status", status, "message", msg)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto HTTP statuses. Ownership
// mismatches answer 404 so foreign ids are indistinguishable from
// missing ones.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotAuthenticated):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrOwnerMismatch):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidAccountType),
		errors.Is(err, core.ErrInvalidTxType),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrInvalidDayOfMonth),
		errors.Is(err, core.ErrMissingAccount):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
