package calculator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrNoMembers          = errors.New("group has no members")
	ErrMissingDescription = errors.New("description is required")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrPayerNotMember     = errors.New("payer must be a group member")
	ErrUnknownSplitType   = errors.New("unknown split type")
	ErrEmptySplits        = errors.New("custom split requires at least one share")
	ErrUnknownMember      = errors.New("split references a member outside the group")
	ErrNegativeShare      = errors.New("split shares cannot be negative")
	ErrSplitMismatch      = errors.New("splits must add up to the expense amount")
)

// BuildSplits computes the split map recorded on a new expense.
//
// equal: every member gets amount / memberCount.
// custom: the given shares are copied; when the payer has no share of their own
// it is derived as amount - sum(others).
//
// The result is not validated; pass the finished expense to ValidateExpense.
func BuildSplits(group models.Group, payer string, amount decimal.Decimal, splitType models.SplitType, custom map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	if len(group.Members) == 0 {
		return nil, ErrNoMembers
	}

	switch splitType {
	case models.SplitEqual:
		share := amount.Div(decimal.NewFromInt(int64(len(group.Members))))
		splits := make(map[string]decimal.Decimal, len(group.Members))
		for _, m := range group.Members {
			splits[m.ID] = share
		}
		return splits, nil

	case models.SplitCustom:
		if len(custom) == 0 {
			return nil, ErrEmptySplits
		}
		payerMember, ok := group.MemberByName(payer)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPayerNotMember, payer)
		}

		splits := make(map[string]decimal.Decimal, len(custom)+1)
		others := decimal.Zero
		for id, share := range custom {
			splits[id] = share
			if id != payerMember.ID {
				others = others.Add(share)
			}
		}
		if _, ok := splits[payerMember.ID]; !ok {
			splits[payerMember.ID] = amount.Sub(others)
		}
		return splits, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSplitType, splitType)
	}
}

// ValidateExpense checks an expense against its group before it is recorded.
// The balance calculator trusts whatever passed this check and never
// re-validates.
func ValidateExpense(group models.Group, expense models.Expense) error {
	if strings.TrimSpace(expense.Description) == "" {
		return ErrMissingDescription
	}
	if !expense.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, expense.Amount)
	}
	if !expense.SplitType.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSplitType, expense.SplitType)
	}
	if _, ok := group.MemberByName(expense.Payer); !ok {
		return fmt.Errorf("%w: %q", ErrPayerNotMember, expense.Payer)
	}
	if len(expense.Splits) == 0 {
		return ErrEmptySplits
	}

	for id, share := range expense.Splits {
		if _, ok := group.MemberByID(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownMember, id)
		}
		if share.IsNegative() {
			return fmt.Errorf("%w: %s has %s", ErrNegativeShare, id, share)
		}
	}

	// Equal expenses charge every member amount / memberCount no matter what
	// the split map holds; members sharing an id share one map entry.
	if expense.SplitType != models.SplitCustom {
		return nil
	}

	total := expense.SplitTotal()
	if total.Sub(expense.Amount).Abs().GreaterThan(models.SplitTolerance) {
		return fmt.Errorf("%w: allocated %s of %s",
			ErrSplitMismatch,
			models.FormatAmount(total),
			models.FormatAmount(expense.Amount),
		)
	}

	return nil
}
