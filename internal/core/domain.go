package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountChecking   AccountType = "CHECKING"
	AccountCash       AccountType = "CASH"
	AccountInvestment AccountType = "INVESTMENT"
	AccountCreditCard AccountType = "CREDIT_CARD"
)

const (
	Income   TransactionType = "INCOME"
	Expense  TransactionType = "EXPENSE"
	Transfer TransactionType = "TRANSFER"
)

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
	Yearly  Frequency = "YEARLY"
)

type (
	AccountType     string
	TransactionType string
	Frequency       string

	Money struct {
		Cents int64
	}

	// Account is a store of value owned by exactly one user. For credit
	// cards Balance is the outstanding statement amount owed: it grows
	// with expenses and shrinks with payments, the inverse of a normal
	// account.
	Account struct {
		ID      string
		OwnerID string
		Name    string
		Type    AccountType
		Balance Money
		Icon    string

		// Credit card only.
		ClosingDay int
		DueDay     int
		Limit      Money
	}

	Category struct {
		ID          string
		OwnerID     string
		Name        string
		ParentID    string
		Color       string
		Icon        string
		BudgetLimit Money // zero means no limit
	}

	Installments struct {
		Current int
		Total   int
	}

	// Transaction is the atomic financial event. Value is always positive;
	// the sign of its balance effect is carried by Type. An unpaid
	// transaction has no effect on any balance.
	Transaction struct {
		ID                   string
		OwnerID              string
		Value                Money
		Date                 time.Time
		Description          string
		CategoryID           string
		AccountID            string
		DestinationAccountID string
		Type                 TransactionType
		IsPaid               bool
		IsRecurring          bool
		Tags                 []string
		Installments         *Installments
	}

	// RecurringTransaction is a template for repeating transactions.
	// NextDueDate always points at the next occurrence not yet
	// materialized and only moves forward.
	RecurringTransaction struct {
		ID                string
		OwnerID           string
		Description       string
		Value             Money
		Type              TransactionType
		CategoryID        string
		AccountID         string
		Frequency         Frequency
		NextDueDate       time.Time
		Active            bool
		LastGeneratedDate time.Time
	}

	GoalDeposit struct {
		ID     string
		Date   time.Time
		Amount Money
	}

	// Goal is a savings target with an append-only deposit ledger.
	// CurrentAmount always equals the sum of History amounts.
	Goal struct {
		ID            string
		OwnerID       string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      time.Time
		Icon          string
		History       []GoalDeposit
	}

	// AppNotification is derived from the transaction set on every scan and
	// never persisted. The ID is deterministic per condition so repeated
	// scans de-duplicate naturally.
	AppNotification struct {
		ID      string
		Title   string
		Message string
		Type    Severity
		Date    time.Time
	}

	Severity string
)

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidTxType      = errors.New("invalid transaction type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrInvalidDayOfMonth  = errors.New("day of month must be between 1 and 31")
	ErrMissingAccount     = errors.New("missing account reference")
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountCash, AccountInvestment, AccountCreditCard:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	if a.Type == AccountCreditCard {
		if a.ClosingDay < 1 || a.ClosingDay > 31 {
			return ErrInvalidDayOfMonth
		}
		if a.DueDay < 1 || a.DueDay > 31 {
			return ErrInvalidDayOfMonth
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.BudgetLimit.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Value.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !t.Type.Valid() {
		return ErrInvalidTxType
	}
	if strings.TrimSpace(t.AccountID) == "" {
		return ErrMissingAccount
	}
	return nil
}

func (r RecurringTransaction) Validate() error {
	if err := r.Value.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !r.Type.Valid() {
		return ErrInvalidTxType
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if r.NextDueDate.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(r.AccountID) == "" {
		return ErrMissingAccount
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Midnight truncates t to the start of its day. Due-date arithmetic is
// date-only; time-of-day never participates.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
