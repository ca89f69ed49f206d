package http

import (
	"net/http"
	"time"

	"contas/internal/core"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request, ownerID string) {
	goals := s.deps.Goals.List(r.Context(), ownerID)
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body goalJSON
	if !decodeBody(w, r, &body) {
		return
	}
	body.ID = ""

	created, err := s.deps.Goals.Add(r.Context(), ownerID, body.toCore())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalJSON(created))
}

func (s *Server) handleGoalDeposit(w http.ResponseWriter, r *http.Request, ownerID string) {
	var body struct {
		AmountCents int64  `json:"amountCents"`
		Amount      string `json:"amount,omitempty"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	cents, err := resolveCents(body.Amount, body.AmountCents)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	amount := core.Money{Cents: cents}
	goal, err := s.deps.Goals.Deposit(r.Context(), ownerID, r.PathValue("id"), amount, time.Now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalJSON(goal))
}
