package http

import (
	"net/http"
	"strconv"
	"time"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, ownerID string) {
	if data, ok := s.dashboardCache.Get(ownerID); ok {
		writeJSON(w, http.StatusOK, toDashboardJSON(data))
		return
	}
	data := s.deps.Ledger.CalculateBalances(r.Context(), ownerID, time.Now())
	s.dashboardCache.Set(ownerID, data)
	writeJSON(w, http.StatusOK, toDashboardJSON(data))
}

func (s *Server) handleMonthlyHistory(w http.ResponseWriter, r *http.Request, ownerID string) {
	months := queryMonths(r, 6)
	points := s.deps.Ledger.GetMonthlyHistory(r.Context(), ownerID, months, time.Now())
	out := make([]monthlyPointJSON, 0, len(points))
	for _, p := range points {
		out = append(out, monthlyPointJSON{
			Name:         p.Name,
			IncomeCents:  p.Income.Cents,
			ExpenseCents: p.Expense.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request, ownerID string) {
	months := queryMonths(r, 1)
	spends := s.deps.Ledger.GetExpensesByCategory(r.Context(), ownerID, months, time.Now())
	out := make([]categorySpendJSON, 0, len(spends))
	for _, c := range spends {
		out = append(out, categorySpendJSON{
			Name:       c.Name,
			Color:      c.Color,
			ValueCents: c.Value.Cents,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request, ownerID string) {
	alerts := s.deps.Ledger.CheckUpcomingAlerts(r.Context(), ownerID, time.Now())
	out := make([]notificationJSON, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toNotificationJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// queryMonths parses the months window, clamped to [1, 24].
func queryMonths(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("months")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	if n > 24 {
		return 24
	}
	return n
}
