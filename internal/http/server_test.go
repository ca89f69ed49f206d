package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contas/internal/services"
	"contas/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gw := memory.New()
	ledger := services.NewLedger(gw, nil)
	s := NewServer(":0", Deps{
		Ledger:     ledger,
		Accounts:   services.NewAccountService(gw),
		Categories: services.NewCategoryService(gw),
		Goals:      services.NewGoalService(gw),
		Recurring:  services.NewRecurringProcessor(gw, ledger),
		Seeder:     services.NewSeeder(gw),
	}, Options{RequestsPerMinute: 10000})
	t.Cleanup(func() { s.cacheManager.Stop(); s.limiter.Stop() })
	return s
}

func doRequest(t *testing.T, s *Server, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set(OwnerHeader, owner)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if rec := doRequest(t, s, http.MethodGet, path, "", nil); rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
		}
	}
}

func TestMissingOwnerHeader(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(t, s, http.MethodGet, "/api/transactions", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestTransactionLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	acc := decodeResponse[accountJSON](t, doRequest(t, s, http.MethodPost, "/api/accounts", owner, accountJSON{
		Name: "Conta", Type: "CHECKING", BalanceCents: 100000,
	}))
	if acc.ID == "" {
		t.Fatal("account id not assigned")
	}

	rec := doRequest(t, s, http.MethodPost, "/api/transactions", owner, transactionJSON{
		ValueCents:  5000,
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Description: "Mercado",
		AccountID:   acc.ID,
		Type:        "EXPENSE",
		IsPaid:      true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	created := decodeResponse[transactionJSON](t, rec)

	dash := decodeResponse[dashboardJSON](t, doRequest(t, s, http.MethodGet, "/api/dashboard", owner, nil))
	if dash.RealBalanceCents != 95000 {
		t.Errorf("real balance = %d, want 95000", dash.RealBalanceCents)
	}

	// Delete invalidates the cached dashboard.
	rec = doRequest(t, s, http.MethodDelete, "/api/transactions/"+created.ID, owner, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	dash = decodeResponse[dashboardJSON](t, doRequest(t, s, http.MethodGet, "/api/dashboard", owner, nil))
	if dash.RealBalanceCents != 100000 {
		t.Errorf("real balance after delete = %d, want 100000", dash.RealBalanceCents)
	}
}

func TestTransactionDecimalStringValue(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	acc := decodeResponse[accountJSON](t, doRequest(t, s, http.MethodPost, "/api/accounts", owner, accountJSON{
		Name: "Conta", Type: "CHECKING", BalanceCents: 100000,
	}))

	rec := doRequest(t, s, http.MethodPost, "/api/transactions", owner, transactionJSON{
		Value:       "50,75",
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Description: "Padaria",
		AccountID:   acc.ID,
		Type:        "EXPENSE",
		IsPaid:      true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d body %s", rec.Code, rec.Body.String())
	}
	created := decodeResponse[transactionJSON](t, rec)
	if created.ValueCents != 5075 {
		t.Errorf("value = %d cents, want 5075", created.ValueCents)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/transactions", owner, transactionJSON{
		Value:       "abc",
		Date:        time.Now(),
		Description: "x",
		AccountID:   acc.ID,
		Type:        "EXPENSE",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad decimal: status %d, want 400", rec.Code)
	}

	resp := decodeResponse[goalJSON](t, doRequest(t, s, http.MethodPost, "/api/goals", owner, goalJSON{
		Name: "Reserva", TargetAmountCents: 100000,
	}))
	updated := decodeResponse[goalJSON](t, doRequest(t, s, http.MethodPost,
		fmt.Sprintf("/api/goals/%s/deposits", resp.ID), owner, map[string]string{"amount": "10.50"}))
	if updated.CurrentAmountCents != 1050 {
		t.Errorf("deposit via decimal string = %d cents, want 1050", updated.CurrentAmountCents)
	}
}

func TestTransactionValidationErrors(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	rec := doRequest(t, s, http.MethodPost, "/api/transactions", owner, transactionJSON{
		ValueCents: -100, Date: time.Now(), Description: "x", AccountID: "a", Type: "EXPENSE",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative value: status %d, want 400", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, "/api/transactions/missing", owner, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing id: status %d, want 404", rec.Code)
	}
}

func TestForeignTransactionAnswers404(t *testing.T) {
	s := newTestServer(t)

	acc := decodeResponse[accountJSON](t, doRequest(t, s, http.MethodPost, "/api/accounts", "alice", accountJSON{
		Name: "Conta", Type: "CHECKING", BalanceCents: 1000,
	}))
	created := decodeResponse[transactionJSON](t, doRequest(t, s, http.MethodPost, "/api/transactions", "alice", transactionJSON{
		ValueCents: 100, Date: time.Now(), Description: "x",
		AccountID: acc.ID, Type: "EXPENSE", IsPaid: true,
	}))

	rec := doRequest(t, s, http.MethodDelete, "/api/transactions/"+created.ID, "mallory", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign delete: status %d, want 404", rec.Code)
	}
}

func TestSeedAndSuggest(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	if rec := doRequest(t, s, http.MethodPost, "/api/seed", owner, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("seed: status %d", rec.Code)
	}

	cats := decodeResponse[[]categoryJSON](t, doRequest(t, s, http.MethodGet, "/api/categories", owner, nil))
	if len(cats) != 9 {
		t.Fatalf("got %d categories, want 9", len(cats))
	}

	resp := decodeResponse[map[string]string](t, doRequest(t, s, http.MethodGet, "/api/suggestions?description=uber+centro", owner, nil))
	var transportID string
	for _, c := range cats {
		if c.Name == "Transporte" {
			transportID = c.ID
		}
	}
	if resp["categoryId"] != transportID {
		t.Errorf("suggestion = %q, want %q", resp["categoryId"], transportID)
	}

	if rec := doRequest(t, s, http.MethodGet, "/api/suggestions", owner, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing description: status %d, want 400", rec.Code)
	}
}

func TestGoalDepositOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	goal := decodeResponse[goalJSON](t, doRequest(t, s, http.MethodPost, "/api/goals", owner, goalJSON{
		Name: "Viagem", TargetAmountCents: 500000,
	}))

	updated := decodeResponse[goalJSON](t, doRequest(t, s, http.MethodPost,
		fmt.Sprintf("/api/goals/%s/deposits", goal.ID), owner, map[string]int64{"amountCents": 25000}))
	if updated.CurrentAmountCents != 25000 || len(updated.History) != 1 {
		t.Errorf("deposit result: %+v", updated)
	}

	rec := doRequest(t, s, http.MethodPost,
		fmt.Sprintf("/api/goals/%s/deposits", goal.ID), owner, map[string]int64{"amountCents": -5})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative deposit: status %d, want 400", rec.Code)
	}
}

func TestRecurringProcessOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	acc := decodeResponse[accountJSON](t, doRequest(t, s, http.MethodPost, "/api/accounts", owner, accountJSON{
		Name: "Conta", Type: "CHECKING", BalanceCents: 0,
	}))
	rec := doRequest(t, s, http.MethodPost, "/api/recurring", owner, recurringJSON{
		Description: "Aluguel", ValueCents: 150000, Type: "EXPENSE",
		AccountID: acc.ID, Frequency: "MONTHLY",
		NextDueDate: time.Now().AddDate(0, 0, -1), Active: true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add template: status %d body %s", rec.Code, rec.Body.String())
	}

	resp := decodeResponse[map[string]int](t, doRequest(t, s, http.MethodPost, "/api/recurring/process", owner, nil))
	if resp["processed"] != 1 {
		t.Errorf("processed = %d, want 1", resp["processed"])
	}

	txs := decodeResponse[[]transactionJSON](t, doRequest(t, s, http.MethodGet, "/api/transactions", owner, nil))
	if len(txs) != 1 || !txs[0].IsRecurring || txs[0].IsPaid {
		t.Errorf("materialized transactions: %+v", txs)
	}
}

func TestBudgetUpdateOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := "owner-1"

	cat := decodeResponse[categoryJSON](t, doRequest(t, s, http.MethodPost, "/api/categories", owner, categoryJSON{
		Name: "Alimentação", Color: "#f59e0b",
	}))

	rec := doRequest(t, s, http.MethodPut, "/api/categories/"+cat.ID+"/budget", owner,
		map[string]int64{"budgetLimitCents": 90000})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("budget update: status %d", rec.Code)
	}

	cats := decodeResponse[[]categoryJSON](t, doRequest(t, s, http.MethodGet, "/api/categories", owner, nil))
	if len(cats) != 1 || cats[0].BudgetLimitCents != 90000 {
		t.Errorf("budget not persisted: %+v", cats)
	}
}
