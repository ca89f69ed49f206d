package http

import (
	"net/http"

	"contas/internal/core"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, ownerID string) {
	accounts := s.deps.Accounts.List(r.Context(), ownerID)
	out := make([]accountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveAccount(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body accountJSON
	if !decodeBody(w, r, &body) {
		return
	}

	saved, err := s.deps.Accounts.Save(r.Context(), ownerID, body.toCore())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)

	status := http.StatusOK
	if body.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toAccountJSON(saved))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := s.deps.Accounts.Delete(r.Context(), ownerID, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, ownerID string) {
	categories := s.deps.Categories.List(r.Context(), ownerID)
	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body categoryJSON
	if !decodeBody(w, r, &body) {
		return
	}

	saved, err := s.deps.Categories.Save(r.Context(), ownerID, body.toCore())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if body.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toCategoryJSON(saved))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body struct {
		BudgetLimitCents int64 `json:"budgetLimitCents"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	limit := core.Money{Cents: body.BudgetLimitCents}
	if err := s.deps.Categories.UpdateBudget(r.Context(), ownerID, r.PathValue("id"), limit); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSuggestCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	description := r.URL.Query().Get("description")
	if description == "" {
		writeError(w, r, http.StatusBadRequest, "missing description query parameter")
		return
	}
	id := s.deps.Categories.Suggest(r.Context(), ownerID, description)
	writeJSON(w, http.StatusOK, map[string]string{"categoryId": id})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request, ownerID string) {
	if err := s.deps.Seeder.EnsureDefaults(r.Context(), ownerID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.dashboardCache.Delete(ownerID)
	w.WriteHeader(http.StatusNoContent)
}
