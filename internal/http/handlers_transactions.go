package http

import (
	"net/http"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, ownerID string) {
	txs := s.deps.Ledger.ListTransactions(r.Context(), ownerID)
	out := make([]transactionJSON, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionJSON(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body transactionJSON
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

	created, err := s.deps.Ledger.CreateTransaction(r.Context(), ownerID, body.toCore())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)
	writeJSON(w, http.StatusCreated, toTransactionJSON(created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body transactionJSON
	if !decodeBody(w, r, &body) {
		return
	}
	body.ID = r.PathValue("id")
	cents, err := resolveCents(body.Value, body.ValueCents)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	body.ValueCents = cents

	if err := s.deps.Ledger.UpdateTransaction(r.Context(), ownerID, body.toCore()); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)
	writeJSON(w, http.StatusOK, toTransactionJSON(body.toCore()))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := s.deps.Ledger.DeleteTransaction(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)
	w.WriteHeader(http.StatusNoContent)
}
