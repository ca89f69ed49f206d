package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "tx-1",
		OwnerID:     "owner-1",
		Value:       Money{Cents: 5000},
		Date:        time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		Description: "Mercado",
		CategoryID:  "cat-1",
		AccountID:   "acc-1",
		Type:        Expense,
		IsPaid:      true,
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"zero value", func(tx *Transaction) { tx.Value = Money{} }, ErrInvalidAmount},
		{"negative value", func(tx *Transaction) { tx.Value = Money{Cents: -100} }, ErrInvalidAmount},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{"blank description", func(tx *Transaction) { tx.Description = "   " }, ErrEmptyDescription},
		{"unknown type", func(tx *Transaction) { tx.Type = "REFUND" }, ErrInvalidTxType},
		{"missing account", func(tx *Transaction) { tx.AccountID = "" }, ErrMissingAccount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{
			name:    "valid checking",
			account: Account{Name: "Nubank (Conta)", Type: AccountChecking},
		},
		{
			name: "valid credit card",
			account: Account{
				Name: "Nubank (Cartão)", Type: AccountCreditCard,
				ClosingDay: 25, DueDay: 5, Limit: Money{Cents: 500000},
			},
		},
		{
			name:    "empty name",
			account: Account{Type: AccountCash},
			wantErr: true,
		},
		{
			name:    "unknown type",
			account: Account{Name: "x", Type: "SAVINGS"},
			wantErr: true,
		},
		{
			name: "credit card closing day out of range",
			account: Account{
				Name: "Cartão", Type: AccountCreditCard,
				ClosingDay: 0, DueDay: 5,
			},
			wantErr: true,
		},
		{
			name: "credit card due day out of range",
			account: Account{
				Name: "Cartão", Type: AccountCreditCard,
				ClosingDay: 25, DueDay: 32,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringTransactionValidate(t *testing.T) {
	valid := RecurringTransaction{
		Description: "Aluguel",
		Value:       Money{Cents: 150000},
		Type:        Expense,
		AccountID:   "acc-1",
		Frequency:   Monthly,
		NextDueDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}

	bad := valid
	bad.Frequency = "FORTNIGHTLY"
	if !errors.Is(bad.Validate(), ErrInvalidFrequency) {
		t.Error("expected ErrInvalidFrequency")
	}

	bad = valid
	bad.NextDueDate = time.Time{}
	if !errors.Is(bad.Validate(), ErrInvalidDate) {
		t.Error("expected ErrInvalidDate")
	}
}

func TestMidnight(t *testing.T) {
	in := time.Date(2024, 6, 10, 17, 45, 12, 999, time.UTC)
	got := Midnight(in)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Midnight() = %v, want %v", got, want)
	}
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC)
	c := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	if !SameMonth(a, b) {
		t.Error("same month not detected")
	}
	if SameMonth(a, c) {
		t.Error("different years must not match")
	}
}
