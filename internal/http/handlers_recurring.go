package http

import (
	"net/http"
	"time"
)

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request, ownerID string) {
	templates := s.deps.Recurring.ListTemplates(r.Context(), ownerID)
	out := make([]recurringJSON, 0, len(templates))
	for _, t := range templates {
		out = append(out, toRecurringJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddRecurring(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body recurringJSON
	if !decodeBody(w, r, &body) {
		return
	}
	body.ID = ""
	cents, err := resolveCents(body.Value, body.ValueCents)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	body.ValueCents = cents

	created, err := s.deps.Recurring.AddTemplate(r.Context(), ownerID, body.toCore())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringJSON(created))
}

// handleProcessRecurring runs one materialization pass for the caller.
// The recurring worker performs the same pass on a schedule; this
// endpoint exists so clients can catch up on demand.
func (s *Server) handleProcessRecurring(w http.ResponseWriter, r *http.Request, ownerID string) {
	n, err := s.deps.Recurring.ProcessDue(r.Context(), ownerID, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)
	writeJSON(w, http.StatusOK, map[string]int{"processed": n})
}
