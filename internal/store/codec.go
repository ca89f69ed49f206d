package store

import (
	"time"

	"github.com/shopspring/decimal"

	"contas/internal/core"
)

// Documents come from a schemaless store: money may arrive as a decimal
// string, a JSON float, or be missing entirely; dates may be RFC3339 or
// date-only. Decoding coerces everything into typed domain values and
// fills zero values for absent optional fields. Encoding always writes
// money as decimal strings so no float artifacts land in storage.

var hundred = decimal.NewFromInt(100)

// EncodeMoney renders an amount the way documents store it. Services use
// it to build balance patches.
func EncodeMoney(m core.Money) string { return moneyOut(m) }

// DecodeMoney coerces a raw document value into an amount.
func DecodeMoney(v any) core.Money { return moneyIn(v) }

func moneyOut(m core.Money) string {
	return decimal.New(m.Cents, -2).String()
}

func moneyIn(v any) core.Money {
	var d decimal.Decimal
	switch x := v.(type) {
	case string:
		parsed, err := decimal.NewFromString(x)
		if err != nil {
			return core.Money{}
		}
		d = parsed
	case float64:
		d = decimal.NewFromFloat(x)
	case int64:
		d = decimal.NewFromInt(x)
	case int:
		d = decimal.NewFromInt(int64(x))
	default:
		return core.Money{}
	}
	return core.Money{Cents: d.Mul(hundred).Round(0).IntPart()}
}

func timeOut(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func timeIn(v any) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

func str(rec Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func boolean(rec Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func intIn(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int64:
		return int(x)
	case int:
		return x
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			return 0
		}
		return int(d.IntPart())
	}
	return 0
}

func EncodeAccount(a core.Account) Record {
	rec := Record{
		"id":      a.ID,
		OwnerField: a.OwnerID,
		"name":    a.Name,
		"type":    string(a.Type),
		"balance": moneyOut(a.Balance),
		"icon":    a.Icon,
	}
	if a.Type == core.AccountCreditCard {
		rec["closingDay"] = a.ClosingDay
		rec["dueDay"] = a.DueDay
		rec["limit"] = moneyOut(a.Limit)
	}
	return rec
}

func DecodeAccount(rec Record) core.Account {
	return core.Account{
		ID:         str(rec, "id"),
		OwnerID:    str(rec, OwnerField),
		Name:       str(rec, "name"),
		Type:       core.AccountType(str(rec, "type")),
		Balance:    moneyIn(rec["balance"]),
		Icon:       str(rec, "icon"),
		ClosingDay: intIn(rec["closingDay"]),
		DueDay:     intIn(rec["dueDay"]),
		Limit:      moneyIn(rec["limit"]),
	}
}

func EncodeCategory(c core.Category) Record {
	rec := Record{
		"id":      c.ID,
		OwnerField: c.OwnerID,
		"name":    c.Name,
		"color":   c.Color,
		"icon":    c.Icon,
	}
	if c.ParentID != "" {
		rec["parentId"] = c.ParentID
	}
	if c.BudgetLimit.Cents > 0 {
		rec["budgetLimit"] = moneyOut(c.BudgetLimit)
	}
	return rec
}

func DecodeCategory(rec Record) core.Category {
	return core.Category{
		ID:          str(rec, "id"),
		OwnerID:     str(rec, OwnerField),
		Name:        str(rec, "name"),
		ParentID:    str(rec, "parentId"),
		Color:       str(rec, "color"),
		Icon:        str(rec, "icon"),
		BudgetLimit: moneyIn(rec["budgetLimit"]),
	}
}

func EncodeTransaction(t core.Transaction) Record {
	rec := Record{
		"id":          t.ID,
		OwnerField:    t.OwnerID,
		"value":       moneyOut(t.Value),
		"date":        timeOut(t.Date),
		"description": t.Description,
		"categoryId":  t.CategoryID,
		"accountId":   t.AccountID,
		"type":        string(t.Type),
		"isPaid":      t.IsPaid,
	}
	if t.DestinationAccountID != "" {
		rec["destinationAccountId"] = t.DestinationAccountID
	}
	if t.IsRecurring {
		rec["isRecurring"] = true
	}
	if len(t.Tags) > 0 {
		tags := make([]any, len(t.Tags))
		for i, tag := range t.Tags {
			tags[i] = tag
		}
		rec["tags"] = tags
	}
	if t.Installments != nil {
		rec["installments"] = map[string]any{
			"current": t.Installments.Current,
			"total":   t.Installments.Total,
		}
	}
	return rec
}

func DecodeTransaction(rec Record) core.Transaction {
	tx := core.Transaction{
		ID:                   str(rec, "id"),
		OwnerID:              str(rec, OwnerField),
		Value:                moneyIn(rec["value"]),
		Date:                 timeIn(rec["date"]),
		Description:          str(rec, "description"),
		CategoryID:           str(rec, "categoryId"),
		AccountID:            str(rec, "accountId"),
		DestinationAccountID: str(rec, "destinationAccountId"),
		Type:                 core.TransactionType(str(rec, "type")),
		IsPaid:               boolean(rec, "isPaid"),
		IsRecurring:          boolean(rec, "isRecurring"),
	}
	if raw, ok := rec["tags"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok {
				tx.Tags = append(tx.Tags, s)
			}
		}
	}
	if raw, ok := rec["installments"].(map[string]any); ok {
		tx.Installments = &core.Installments{
			Current: intIn(raw["current"]),
			Total:   intIn(raw["total"]),
		}
	}
	return tx
}

func EncodeRecurring(r core.RecurringTransaction) Record {
	rec := Record{
		"id":          r.ID,
		OwnerField:    r.OwnerID,
		"description": r.Description,
		"value":       moneyOut(r.Value),
		"type":        string(r.Type),
		"categoryId":  r.CategoryID,
		"accountId":   r.AccountID,
		"frequency":   string(r.Frequency),
		"nextDueDate": timeOut(r.NextDueDate),
		"active":      r.Active,
	}
	if !r.LastGeneratedDate.IsZero() {
		rec["lastGeneratedDate"] = timeOut(r.LastGeneratedDate)
	}
	return rec
}

func DecodeRecurring(rec Record) core.RecurringTransaction {
	return core.RecurringTransaction{
		ID:                str(rec, "id"),
		OwnerID:           str(rec, OwnerField),
		Description:       str(rec, "description"),
		Value:             moneyIn(rec["value"]),
		Type:              core.TransactionType(str(rec, "type")),
		CategoryID:        str(rec, "categoryId"),
		AccountID:         str(rec, "accountId"),
		Frequency:         core.Frequency(str(rec, "frequency")),
		NextDueDate:       timeIn(rec["nextDueDate"]),
		Active:            boolean(rec, "active"),
		LastGeneratedDate: timeIn(rec["lastGeneratedDate"]),
	}
}

func EncodeGoal(g core.Goal) Record {
	rec := Record{
		"id":            g.ID,
		OwnerField:      g.OwnerID,
		"name":          g.Name,
		"targetAmount":  moneyOut(g.TargetAmount),
		"currentAmount": moneyOut(g.CurrentAmount),
		"icon":          g.Icon,
	}
	if !g.Deadline.IsZero() {
		rec["deadline"] = timeOut(g.Deadline)
	}
	history := make([]any, len(g.History))
	for i, h := range g.History {
		history[i] = map[string]any{
			"id":     h.ID,
			"date":   timeOut(h.Date),
			"amount": moneyOut(h.Amount),
		}
	}
	rec["history"] = history
	return rec
}

func DecodeGoal(rec Record) core.Goal {
	g := core.Goal{
		ID:            str(rec, "id"),
		OwnerID:       str(rec, OwnerField),
		Name:          str(rec, "name"),
		TargetAmount:  moneyIn(rec["targetAmount"]),
		CurrentAmount: moneyIn(rec["currentAmount"]),
		Deadline:      timeIn(rec["deadline"]),
		Icon:          str(rec, "icon"),
	}
	if raw, ok := rec["history"].([]any); ok {
		for _, v := range raw {
			entry, ok := v.(map[string]any)
			if !ok {
				continue
			}
			g.History = append(g.History, core.GoalDeposit{
				ID:     str(entry, "id"),
				Date:   timeIn(entry["date"]),
				Amount: moneyIn(entry["amount"]),
			})
		}
	}
	return g
}
