package services

import (
	"context"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/store"
)

func newTestProcessor(t *testing.T) (*RecurringProcessor, *Ledger, *AccountService, store.Gateway) {
	t.Helper()
	ledger, gw, accounts := newTestLedger(t)
	return NewRecurringProcessor(gw, ledger), ledger, accounts, gw
}

func TestAdvance(t *testing.T) {
	base := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		freq core.Frequency
		want time.Time
	}{
		{core.Daily, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{core.Weekly, time.Date(2024, 2, 7, 0, 0, 0, 0, time.UTC)},
		// Jan 31 + 1 month normalizes through Feb 31.
		{core.Monthly, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{core.Yearly, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			if got := Advance(base, tt.freq); !got.Equal(tt.want) {
				t.Errorf("Advance(%s) = %v, want %v", tt.freq, got, tt.want)
			}
		})
	}
}

func TestProcessDueMaterializesOneOccurrence(t *testing.T) {
	proc, ledger, accounts, _ := newTestProcessor(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 50000},
	})

	due := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	tpl, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Aluguel",
		Value:       core.Money{Cents: 150000},
		Type:        core.Expense,
		AccountID:   acc.ID,
		Frequency:   core.Monthly,
		NextDueDate: due,
		Active:      true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Same-day run fires: the comparison is date-only.
	now := time.Date(2024, 6, 10, 18, 30, 0, 0, time.UTC)
	n, err := proc.ProcessDue(ctx, testOwner, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}

	txs := ledger.ListTransactions(ctx, testOwner)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	got := txs[0]
	if got.IsPaid {
		t.Error("materialized occurrence must be unpaid")
	}
	if !got.IsRecurring {
		t.Error("materialized occurrence must be flagged recurring")
	}
	if !got.Date.Equal(due) {
		t.Errorf("occurrence dated %v, want the due date %v", got.Date, due)
	}
	if got.Value.Cents != 150000 {
		t.Errorf("occurrence value = %d, want 150000", got.Value.Cents)
	}

	// Unpaid: the account is untouched.
	if bal := accountBalance(t, accounts, testOwner, acc.ID); bal != 50000 {
		t.Errorf("balance moved to %d", bal)
	}

	// Template advanced by one month from the previous due date.
	after := mustTemplate(t, proc, testOwner, tpl.ID)
	want := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	if !after.NextDueDate.Equal(want) {
		t.Errorf("next due = %v, want %v", after.NextDueDate, want)
	}
	if after.LastGeneratedDate.IsZero() {
		t.Error("last generated date not set")
	}
}

func TestProcessDueIsIdempotentWithinPeriod(t *testing.T) {
	proc, ledger, accounts, _ := newTestProcessor(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 0},
	})
	if _, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Internet", Value: core.Money{Cents: 9900}, Type: core.Expense,
		AccountID: acc.ID, Frequency: core.Monthly,
		NextDueDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := proc.ProcessDue(ctx, testOwner, now); err != nil {
			t.Fatal(err)
		}
	}
	if txs := ledger.ListTransactions(ctx, testOwner); len(txs) != 1 {
		t.Errorf("got %d occurrences after repeated runs, want 1", len(txs))
	}
}

func TestProcessDueOverdueCatchesUpOnePerPass(t *testing.T) {
	proc, ledger, accounts, _ := newTestProcessor(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 0},
	})
	// Three weeks overdue.
	if _, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Feira", Value: core.Money{Cents: 20000}, Type: core.Expense,
		AccountID: acc.ID, Frequency: core.Weekly,
		NextDueDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC)
	wantDates := []time.Time{
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 22, 0, 0, 0, 0, time.UTC),
	}
	for i := range wantDates {
		n, err := proc.ProcessDue(ctx, testOwner, now)
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("pass %d processed %d, want 1", i, n)
		}
	}
	// Caught up: the next fires only on the 29th.
	if n, _ := proc.ProcessDue(ctx, testOwner, now); n != 0 {
		t.Fatalf("caught-up pass processed %d, want 0", n)
	}

	txs := ledger.ListTransactions(ctx, testOwner)
	if len(txs) != len(wantDates) {
		t.Fatalf("got %d occurrences, want %d", len(txs), len(wantDates))
	}
	seen := map[string]bool{}
	for _, tx := range txs {
		seen[tx.Date.Format("2006-01-02")] = true
	}
	for _, d := range wantDates {
		if !seen[d.Format("2006-01-02")] {
			t.Errorf("missing occurrence dated %s", d.Format("2006-01-02"))
		}
	}
}

func TestProcessDueSkipsInactiveAndFuture(t *testing.T) {
	proc, ledger, accounts, _ := newTestProcessor(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 0},
	})
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	if _, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Pausada", Value: core.Money{Cents: 1000}, Type: core.Expense,
		AccountID: acc.ID, Frequency: core.Monthly, NextDueDate: now, Active: false,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Futura", Value: core.Money{Cents: 1000}, Type: core.Expense,
		AccountID: acc.ID, Frequency: core.Monthly,
		NextDueDate: now.AddDate(0, 0, 1), Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := proc.ProcessDue(ctx, testOwner, now)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
	if txs := ledger.ListTransactions(ctx, testOwner); len(txs) != 0 {
		t.Errorf("got %d transactions, want 0", len(txs))
	}
}

func TestProcessDueIsolatesTemplateFailures(t *testing.T) {
	proc, ledger, accounts, _ := newTestProcessor(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 0},
	})
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	// References an account that does not exist; materialization fails.
	if _, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Quebrada", Value: core.Money{Cents: 1000}, Type: core.Expense,
		AccountID: "missing-account", Frequency: core.Monthly, NextDueDate: due, Active: true,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := proc.AddTemplate(ctx, testOwner, core.RecurringTransaction{
		Description: "Boa", Value: core.Money{Cents: 2000}, Type: core.Expense,
		AccountID: acc.ID, Frequency: core.Monthly, NextDueDate: due, Active: true,
	}); err != nil {
		t.Fatal(err)
	}

	n, err := proc.ProcessDue(ctx, testOwner, due)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("processed = %d, want 1", n)
	}
	txs := ledger.ListTransactions(ctx, testOwner)
	if len(txs) != 1 || txs[0].Description != "Boa" {
		t.Errorf("healthy template not materialized: %+v", txs)
	}
}

func TestProcessAll(t *testing.T) {
	proc, _, accounts, _ := newTestProcessor(t)
	ctx := context.Background()
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, owner := range []string{"alice", "bob"} {
		acc := seedAccount(t, accounts, owner, core.Account{
			Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 0},
		})
		if _, err := proc.AddTemplate(ctx, owner, core.RecurringTransaction{
			Description: "Assinatura", Value: core.Money{Cents: 3000}, Type: core.Expense,
			AccountID: acc.ID, Frequency: core.Monthly, NextDueDate: due, Active: true,
		}); err != nil {
			t.Fatal(err)
		}
	}

	total, err := proc.ProcessAll(ctx, due)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total processed = %d, want 2", total)
	}
}

func mustTemplate(t *testing.T, proc *RecurringProcessor, owner, id string) core.RecurringTransaction {
	t.Helper()
	for _, tpl := range proc.ListTemplates(context.Background(), owner) {
		if tpl.ID == id {
			return tpl
		}
	}
	t.Fatalf("template %s not found", id)
	return core.RecurringTransaction{}
}
