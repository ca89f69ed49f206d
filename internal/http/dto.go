package http

import (
	"time"

	"contas/internal/core"
	"contas/internal/services"
)

// Wire representations. Money travels as integer cents; requests may
// send a decimal string instead (`value`/`amount`). Dates are RFC 3339.
type (
	transactionJSON struct {
		ID                   string             `json:"id,omitempty"`
		ValueCents           int64              `json:"valueCents"`
		Value                string             `json:"value,omitempty"`
		Date                 time.Time          `json:"date"`
		Description          string             `json:"description"`
		CategoryID           string             `json:"categoryId,omitempty"`
		AccountID            string             `json:"accountId"`
		DestinationAccountID string             `json:"destinationAccountId,omitempty"`
		Type                 string             `json:"type"`
		IsPaid               bool               `json:"isPaid"`
		IsRecurring          bool               `json:"isRecurring,omitempty"`
		Tags                 []string           `json:"tags,omitempty"`
		Installments         *installmentsJSON  `json:"installments,omitempty"`
	}

	installmentsJSON struct {
		Current int `json:"current"`
		Total   int `json:"total"`
	}

	accountJSON struct {
		ID           string `json:"id,omitempty"`
		Name         string `json:"name"`
		Type         string `json:"type"`
		BalanceCents int64  `json:"balanceCents"`
		Icon         string `json:"icon,omitempty"`
		ClosingDay   int    `json:"closingDay,omitempty"`
		DueDay       int    `json:"dueDay,omitempty"`
		LimitCents   int64  `json:"limitCents,omitempty"`
	}

	categoryJSON struct {
		ID               string `json:"id,omitempty"`
		Name             string `json:"name"`
		ParentID         string `json:"parentId,omitempty"`
		Color            string `json:"color,omitempty"`
		Icon             string `json:"icon,omitempty"`
		BudgetLimitCents int64  `json:"budgetLimitCents,omitempty"`
	}

	goalJSON struct {
		ID                 string            `json:"id,omitempty"`
		Name               string            `json:"name"`
		TargetAmountCents  int64             `json:"targetAmountCents"`
		CurrentAmountCents int64             `json:"currentAmountCents"`
		Deadline           *time.Time        `json:"deadline,omitempty"`
		Icon               string            `json:"icon,omitempty"`
		History            []goalDepositJSON `json:"history"`
	}

	goalDepositJSON struct {
		ID          string    `json:"id"`
		Date        time.Time `json:"date"`
		AmountCents int64     `json:"amountCents"`
	}

	recurringJSON struct {
		ID                string     `json:"id,omitempty"`
		Description       string     `json:"description"`
		ValueCents        int64      `json:"valueCents"`
		Value             string     `json:"value,omitempty"`
		Type              string     `json:"type"`
		CategoryID        string     `json:"categoryId,omitempty"`
		AccountID         string     `json:"accountId"`
		Frequency         string     `json:"frequency"`
		NextDueDate       time.Time  `json:"nextDueDate"`
		Active            bool       `json:"active"`
		LastGeneratedDate *time.Time `json:"lastGeneratedDate,omitempty"`
	}

	dashboardJSON struct {
		RealBalanceCents      int64 `json:"realBalanceCents"`
		ProjectedBalanceCents int64 `json:"projectedBalanceCents"`
		MonthlyIncomeCents    int64 `json:"monthlyIncomeCents"`
		MonthlyExpenseCents   int64 `json:"monthlyExpenseCents"`
	}

	monthlyPointJSON struct {
		Name         string `json:"name"`
		IncomeCents  int64  `json:"incomeCents"`
		ExpenseCents int64  `json:"expenseCents"`
	}

	categorySpendJSON struct {
		Name       string `json:"name"`
		Color      string `json:"color"`
		ValueCents int64  `json:"valueCents"`
	}

	notificationJSON struct {
		ID      string    `json:"id"`
		Title   string    `json:"title"`
		Message string    `json:"message"`
		Type    string    `json:"type"`
		Date    time.Time `json:"date"`
	}
)

func toTransactionJSON(tx core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:                   tx.ID,
		ValueCents:           tx.Value.Cents,
		Date:                 tx.Date,
		Description:          tx.Description,
		CategoryID:           tx.CategoryID,
		AccountID:            tx.AccountID,
		DestinationAccountID: tx.DestinationAccountID,
		Type:                 string(tx.Type),
		IsPaid:               tx.IsPaid,
		IsRecurring:          tx.IsRecurring,
		Tags:                 tx.Tags,
	}
	if tx.Installments != nil {
		out.Installments = &installmentsJSON{
			Current: tx.Installments.Current,
			Total:   tx.Installments.Total,
		}
	}
	return out
}

func (j transactionJSON) toCore() core.Transaction {
	tx := core.Transaction{
		ID:                   j.ID,
		Value:                core.Money{Cents: j.ValueCents},
		Date:                 j.Date,
		Description:          j.Description,
		CategoryID:           j.CategoryID,
		AccountID:            j.AccountID,
		DestinationAccountID: j.DestinationAccountID,
		Type:                 core.TransactionType(j.Type),
		IsPaid:               j.IsPaid,
		IsRecurring:          j.IsRecurring,
		Tags:                 j.Tags,
	}
	if j.Installments != nil {
		tx.Installments = &core.Installments{
			Current: j.Installments.Current,
			Total:   j.Installments.Total,
		}
	}
	return tx
}

func toAccountJSON(a core.Account) accountJSON {
	return accountJSON{
		ID:           a.ID,
		Name:         a.Name,
		Type:         string(a.Type),
		BalanceCents: a.Balance.Cents,
		Icon:         a.Icon,
		ClosingDay:   a.ClosingDay,
		DueDay:       a.DueDay,
		LimitCents:   a.Limit.Cents,
	}
}

func (j accountJSON) toCore() core.Account {
	return core.Account{
		ID:         j.ID,
		Name:       j.Name,
		Type:       core.AccountType(j.Type),
		Balance:    core.Money{Cents: j.BalanceCents},
		Icon:       j.Icon,
		ClosingDay: j.ClosingDay,
		DueDay:     j.DueDay,
		Limit:      core.Money{Cents: j.LimitCents},
	}
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:               c.ID,
		Name:             c.Name,
		ParentID:         c.ParentID,
		Color:            c.Color,
		Icon:             c.Icon,
		BudgetLimitCents: c.BudgetLimit.Cents,
	}
}

func (j categoryJSON) toCore() core.Category {
	return core.Category{
		ID:          j.ID,
		Name:        j.Name,
		ParentID:    j.ParentID,
		Color:       j.Color,
		Icon:        j.Icon,
		BudgetLimit: core.Money{Cents: j.BudgetLimitCents},
	}
}

func toGoalJSON(g core.Goal) goalJSON {
	out := goalJSON{
		ID:                 g.ID,
		Name:               g.Name,
		TargetAmountCents:  g.TargetAmount.Cents,
		CurrentAmountCents: g.CurrentAmount.Cents,
		Icon:               g.Icon,
		History:            make([]goalDepositJSON, 0, len(g.History)),
	}
	if !g.Deadline.IsZero() {
		deadline := g.Deadline
		out.Deadline = &deadline
	}
	for _, d := range g.History {
		out.History = append(out.History, goalDepositJSON{
			ID:          d.ID,
			Date:        d.Date,
			AmountCents: d.Amount.Cents,
		})
	}
	return out
}

func (j goalJSON) toCore() core.Goal {
	g := core.Goal{
		ID:           j.ID,
		Name:         j.Name,
		TargetAmount: core.Money{Cents: j.TargetAmountCents},
		Icon:         j.Icon,
	}
	if j.Deadline != nil {
		g.Deadline = *j.Deadline
	}
	return g
}

func toRecurringJSON(t core.RecurringTransaction) recurringJSON {
	out := recurringJSON{
		ID:          t.ID,
		Description: t.Description,
		ValueCents:  t.Value.Cents,
		Type:        string(t.Type),
		CategoryID:  t.CategoryID,
		AccountID:   t.AccountID,
		Frequency:   string(t.Frequency),
		NextDueDate: t.NextDueDate,
		Active:      t.Active,
	}
	if !t.LastGeneratedDate.IsZero() {
		last := t.LastGeneratedDate
		out.LastGeneratedDate = &last
	}
	return out
}

func (j recurringJSON) toCore() core.RecurringTransaction {
	return core.RecurringTransaction{
		ID:          j.ID,
		Description: j.Description,
		Value:       core.Money{Cents: j.ValueCents},
		Type:        core.TransactionType(j.Type),
		CategoryID:  j.CategoryID,
		AccountID:   j.AccountID,
		Frequency:   core.Frequency(j.Frequency),
		NextDueDate: j.NextDueDate,
		Active:      j.Active,
	}
}

func toDashboardJSON(d services.DashboardData) dashboardJSON {
	return dashboardJSON{
		RealBalanceCents:      d.RealBalance.Cents,
		ProjectedBalanceCents: d.ProjectedBalance.Cents,
		MonthlyIncomeCents:    d.MonthlyIncome.Cents,
		MonthlyExpenseCents:   d.MonthlyExpense.Cents,
	}
}

func toNotificationJSON(n core.AppNotification) notificationJSON {
	return notificationJSON{
		ID:      n.ID,
		Title:   n.Title,
		Message: n.Message,
		Type:    string(n.Type),
		Date:    n.Date,
	}
}

// resolveCents picks the amount from a request body. A decimal string
// takes precedence over integer cents when both are present.
func resolveCents(value string, cents int64) (int64, error) {
	if value == "" {
		return cents, nil
	}
	return core.ParseDecimalToCents(value)
}
