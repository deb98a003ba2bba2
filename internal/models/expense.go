package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType is the policy used to allocate an expense across members.
type SplitType string

const (
	// SplitEqual charges every group member amount / memberCount.
	SplitEqual SplitType = "equal"
	// SplitCustom charges each member the share recorded in Expense.Splits.
	SplitCustom SplitType = "custom"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	return t == SplitEqual || t == SplitCustom
}

// Expense is a single recorded payment.
type Expense struct {
	// ID is the unique identifier for the expense.
	ID string `json:"id"`

	// Description is what the money was spent on (e.g., "Dinner").
	Description string `json:"description"`

	// Amount is the positive total paid.
	Amount decimal.Decimal `json:"amount"`

	// Payer is the name of the member who paid.
	Payer string `json:"payer"`

	// SplitType decides how Amount is allocated.
	SplitType SplitType `json:"splitType"`

	// Splits maps member id to that member's share.
	// At creation time the shares sum to Amount within SplitTolerance.
	Splits map[string]decimal.Decimal `json:"splits"`

	// Timestamp is when the expense was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Settled marks the expense as paid back outside the app.
	// It is a status flag only and never changes computed balances.
	Settled bool `json:"settled"`
}

// SplitTotal returns the sum of all split shares.
func (e *Expense) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, share := range e.Splits {
		total = total.Add(share)
	}
	return total
}

// Clone returns a deep copy of the expense.
func (e Expense) Clone() Expense {
	out := e
	if e.Splits != nil {
		out.Splits = make(map[string]decimal.Decimal, len(e.Splits))
		for k, v := range e.Splits {
			out.Splits[k] = v
		}
	}
	return out
}
