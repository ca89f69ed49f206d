package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/store/memory"
)

const testOwner = "owner-1"

func newTestLedger(t *testing.T) (*Ledger, *memory.Gateway, *AccountService) {
	t.Helper()
	gw := memory.New()
	return NewLedger(gw, nil), gw, NewAccountService(gw)
}

func seedAccount(t *testing.T, accounts *AccountService, owner string, a core.Account) core.Account {
	t.Helper()
	saved, err := accounts.Save(context.Background(), owner, a)
	if err != nil {
		t.Fatalf("seed account %q: %v", a.Name, err)
	}
	return saved
}

func accountBalance(t *testing.T, accounts *AccountService, owner, id string) int64 {
	t.Helper()
	for _, a := range accounts.List(context.Background(), owner) {
		if a.ID == id {
			return a.Balance.Cents
		}
	}
	t.Fatalf("account %s not found", id)
	return 0
}

func TestBalanceDelta(t *testing.T) {
	tests := []struct {
		name        string
		txType      core.TransactionType
		accountType core.AccountType
		isPaid      bool
		want        int64
	}{
		{"paid income", core.Income, core.AccountChecking, true, 5000},
		{"paid expense on checking", core.Expense, core.AccountChecking, true, -5000},
		{"paid expense on cash", core.Expense, core.AccountCash, true, -5000},
		{"paid expense on credit card grows the bill", core.Expense, core.AccountCreditCard, true, 5000},
		{"paid income on credit card", core.Income, core.AccountCreditCard, true, 5000},
		{"unpaid expense has no effect", core.Expense, core.AccountChecking, false, 0},
		{"unpaid income has no effect", core.Income, core.AccountChecking, false, 0},
		{"transfer is a no-op", core.Transfer, core.AccountChecking, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := core.Transaction{Value: core.Money{Cents: 5000}, Type: tt.txType, IsPaid: tt.isPaid}
			if got := BalanceDelta(tx, tt.accountType); got != tt.want {
				t.Errorf("BalanceDelta() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Scenario from the product: checking account A at 1000.00, credit card
// B at 200.00. A paid 50.00 expense against B raises the bill to 250.00;
// editing it to 80.00 reverses the 50 and applies 80; deleting restores
// the seed balance.
func TestCreditCardExpenseLifecycle(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	a := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 100000},
	})
	b := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Cartão", Type: core.AccountCreditCard, Balance: core.Money{Cents: 20000},
		ClosingDay: 25, DueDay: 5,
	})

	tx, err := ledger.CreateTransaction(ctx, testOwner, core.Transaction{
		Value:       core.Money{Cents: 5000},
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Description: "Jantar",
		CategoryID:  "cat-1",
		AccountID:   b.ID,
		Type:        core.Expense,
		IsPaid:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, b.ID); got != 25000 {
		t.Fatalf("after create: card balance = %d, want 25000", got)
	}
	if got := accountBalance(t, accounts, testOwner, a.ID); got != 100000 {
		t.Fatalf("after create: checking balance = %d, want 100000", got)
	}

	tx.Value = core.Money{Cents: 8000}
	if err := ledger.UpdateTransaction(ctx, testOwner, tx); err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, b.ID); got != 28000 {
		t.Fatalf("after edit: card balance = %d, want 28000", got)
	}

	if err := ledger.DeleteTransaction(ctx, testOwner, tx.ID); err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, b.ID); got != 20000 {
		t.Fatalf("after delete: card balance = %d, want 20000", got)
	}
}

func TestApplyReverseRoundTrip(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 50000},
	})

	tx, err := ledger.CreateTransaction(ctx, testOwner, core.Transaction{
		Value:       core.Money{Cents: 12345},
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: "Salário",
		AccountID:   acc.ID,
		Type:        core.Income,
		IsPaid:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := ledger.DeleteTransaction(ctx, testOwner, tx.ID); err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, acc.ID); got != 50000 {
		t.Errorf("round trip changed balance: %d, want 50000", got)
	}
}

func TestUnpaidTransactionHasNoBalanceEffect(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 10000},
	})

	tx, err := ledger.CreateTransaction(ctx, testOwner, core.Transaction{
		Value:       core.Money{Cents: 4000},
		Date:        time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		Description: "Conta de luz",
		AccountID:   acc.ID,
		Type:        core.Expense,
		IsPaid:      false,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, acc.ID); got != 10000 {
		t.Fatalf("unpaid create moved balance: %d", got)
	}

	// Paying it applies the effect once.
	tx.IsPaid = true
	if err := ledger.UpdateTransaction(ctx, testOwner, tx); err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, acc.ID); got != 6000 {
		t.Fatalf("after paying: balance = %d, want 6000", got)
	}

	// Un-paying reverses it.
	tx.IsPaid = false
	if err := ledger.UpdateTransaction(ctx, testOwner, tx); err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, acc.ID); got != 10000 {
		t.Fatalf("after un-paying: balance = %d, want 10000", got)
	}
}

func TestEditMovingTransactionBetweenAccounts(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	src := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 100000},
	})
	dst := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Carteira", Type: core.AccountCash, Balance: core.Money{Cents: 5000},
	})

	tx, err := ledger.CreateTransaction(ctx, testOwner, core.Transaction{
		Value:       core.Money{Cents: 3000},
		Date:        time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		Description: "Padaria",
		AccountID:   src.ID,
		Type:        core.Expense,
		IsPaid:      true,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Reverse against the old account, apply against the new one.
	tx.AccountID = dst.ID
	if err := ledger.UpdateTransaction(ctx, testOwner, tx); err != nil {
		t.Fatal(err)
	}
	if got := accountBalance(t, accounts, testOwner, src.ID); got != 100000 {
		t.Errorf("old account not restored: %d", got)
	}
	if got := accountBalance(t, accounts, testOwner, dst.ID); got != 2000 {
		t.Errorf("new account = %d, want 2000", got)
	}
}

// Balance conservation: after an arbitrary sequence of creates, edits and
// deletes, every account balance equals its seed plus the sum of deltas
// of the currently-paid transactions attached to it.
func TestBalanceConservation(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	checking := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 200000},
	})
	card := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Cartão", Type: core.AccountCreditCard, Balance: core.Money{Cents: 0},
		ClosingDay: 10, DueDay: 17,
	})

	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mk := func(value int64, txType core.TransactionType, accountID string, paid bool) core.Transaction {
		tx, err := ledger.CreateTransaction(ctx, testOwner, core.Transaction{
			Value: core.Money{Cents: value}, Date: date, Description: "mov",
			AccountID: accountID, Type: txType, IsPaid: paid,
		})
		if err != nil {
			t.Fatal(err)
		}
		return tx
	}

	t1 := mk(10000, core.Income, checking.ID, true)
	t2 := mk(2500, core.Expense, checking.ID, true)
	mk(7000, core.Expense, card.ID, true)
	t4 := mk(1500, core.Expense, checking.ID, false)

	// Edit t1 down, delete t2, pay t4, move nothing.
	t1.Value = core.Money{Cents: 8000}
	if err := ledger.UpdateTransaction(ctx, testOwner, t1); err != nil {
		t.Fatal(err)
	}
	if err := ledger.DeleteTransaction(ctx, testOwner, t2.ID); err != nil {
		t.Fatal(err)
	}
	t4.IsPaid = true
	if err := ledger.UpdateTransaction(ctx, testOwner, t4); err != nil {
		t.Fatal(err)
	}

	// checking: 200000 + 8000 (t1) - 1500 (t4) = 206500
	if got := accountBalance(t, accounts, testOwner, checking.ID); got != 206500 {
		t.Errorf("checking = %d, want 206500", got)
	}
	// card: 0 + 7000 (t3) = 7000
	if got := accountBalance(t, accounts, testOwner, card.ID); got != 7000 {
		t.Errorf("card = %d, want 7000", got)
	}

	// Cross-check against the paid transaction set.
	var wantChecking, wantCard int64 = 200000, 0
	for _, tx := range ledger.ListTransactions(ctx, testOwner) {
		switch tx.AccountID {
		case checking.ID:
			wantChecking += BalanceDelta(tx, core.AccountChecking)
		case card.ID:
			wantCard += BalanceDelta(tx, core.AccountCreditCard)
		}
	}
	if got := accountBalance(t, accounts, testOwner, checking.ID); got != wantChecking {
		t.Errorf("checking conservation broken: stored %d, derived %d", got, wantChecking)
	}
	if got := accountBalance(t, accounts, testOwner, card.ID); got != wantCard {
		t.Errorf("card conservation broken: stored %d, derived %d", got, wantCard)
	}
}

func TestOwnershipEnforcement(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	acc := seedAccount(t, accounts, "alice", core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 1000},
	})
	tx, err := ledger.CreateTransaction(ctx, "alice", core.Transaction{
		Value: core.Money{Cents: 100}, Date: time.Now(), Description: "x",
		AccountID: acc.ID, Type: core.Expense, IsPaid: true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := ledger.DeleteTransaction(ctx, "mallory", tx.ID); !errors.Is(err, core.ErrOwnerMismatch) {
		t.Errorf("foreign delete: got %v, want ErrOwnerMismatch", err)
	}
	if _, err := ledger.CreateTransaction(ctx, "mallory", core.Transaction{
		Value: core.Money{Cents: 100}, Date: time.Now(), Description: "x",
		AccountID: acc.ID, Type: core.Expense, IsPaid: true,
	}); !errors.Is(err, core.ErrOwnerMismatch) {
		t.Errorf("foreign account reference: got %v, want ErrOwnerMismatch", err)
	}

	if _, err := ledger.CreateTransaction(ctx, "", core.Transaction{}); !errors.Is(err, core.ErrNotAuthenticated) {
		t.Errorf("missing owner: got %v, want ErrNotAuthenticated", err)
	}
}

func TestDeleteUnknownTransaction(t *testing.T) {
	ledger, _, _ := newTestLedger(t)
	err := ledger.DeleteTransaction(context.Background(), testOwner, "nope")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestTransferHasNoBalanceEffect(t *testing.T) {
	ledger, _, accounts := newTestLedger(t)
	ctx := context.Background()

	src := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Conta", Type: core.AccountChecking, Balance: core.Money{Cents: 10000},
	})
	dst := seedAccount(t, accounts, testOwner, core.Account{
		Name: "Poupança", Type: core.AccountInvestment, Balance: core.Money{Cents: 0},
	})

	if _, err := ledger.CreateTransaction(ctx, testOwner, core.Transaction{
		Value: core.Money{Cents: 5000}, Date: time.Now(), Description: "aporte",
		AccountID: src.ID, DestinationAccountID: dst.ID,
		Type: core.Transfer, IsPaid: true,
	}); err != nil {
		t.Fatal(err)
	}

	if got := accountBalance(t, accounts, testOwner, src.ID); got != 10000 {
		t.Errorf("transfer moved source balance: %d", got)
	}
	if got := accountBalance(t, accounts, testOwner, dst.ID); got != 0 {
		t.Errorf("transfer moved destination balance: %d", got)
	}
}
