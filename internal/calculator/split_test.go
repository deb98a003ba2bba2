package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func TestBuildSplits(t *testing.T) {
	tests := []struct {
		name         string
		payer        string
		amount       string
		splitType    models.SplitType
		custom       map[string]decimal.Decimal
		wantErr      error
		validateFunc func(t *testing.T, splits map[string]decimal.Decimal)
	}{
		{
			name:      "equal split across all members",
			payer:     "Alice",
			amount:    "90",
			splitType: models.SplitEqual,
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				if len(splits) != 3 {
					t.Fatalf("got %d splits, want 3", len(splits))
				}
				for id, share := range splits {
					if !share.Equal(d("30")) {
						t.Errorf("%s share = %s, want 30", id, share)
					}
				}
			},
		},
		{
			name:      "custom split derives payer share",
			payer:     "Bob",
			amount:    "100",
			splitType: models.SplitCustom,
			custom:    map[string]decimal.Decimal{"a": d("40"), "c": d("30")},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				if !splits["b"].Equal(d("30")) {
					t.Errorf("Bob share = %s, want 30", splits["b"])
				}
				if !splits["a"].Equal(d("40")) || !splits["c"].Equal(d("30")) {
					t.Errorf("others changed: %v", splits)
				}
			},
		},
		{
			name:      "custom split keeps explicit payer share",
			payer:     "Bob",
			amount:    "100",
			splitType: models.SplitCustom,
			custom:    map[string]decimal.Decimal{"a": d("50"), "b": d("50")},
			validateFunc: func(t *testing.T, splits map[string]decimal.Decimal) {
				if !splits["b"].Equal(d("50")) {
					t.Errorf("Bob share = %s, want 50", splits["b"])
				}
				if _, ok := splits["c"]; ok {
					t.Error("Carol should not get a share")
				}
			},
		},
		{
			name:      "custom split with no shares",
			payer:     "Bob",
			amount:    "100",
			splitType: models.SplitCustom,
			wantErr:   ErrEmptySplits,
		},
		{
			name:      "custom split with unknown payer",
			payer:     "Mallory",
			amount:    "100",
			splitType: models.SplitCustom,
			custom:    map[string]decimal.Decimal{"a": d("100")},
			wantErr:   ErrPayerNotMember,
		},
		{
			name:      "unknown split type",
			payer:     "Alice",
			amount:    "10",
			splitType: "shares",
			wantErr:   ErrUnknownSplitType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := BuildSplits(threeFriends(), tt.payer, d(tt.amount), tt.splitType, tt.custom)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BuildSplits() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildSplits() unexpected error: %v", err)
			}
			tt.validateFunc(t, splits)
		})
	}
}

func TestBuildSplits_NoMembers(t *testing.T) {
	_, err := BuildSplits(models.Group{}, "Alice", d("10"), models.SplitEqual, nil)
	if !errors.Is(err, ErrNoMembers) {
		t.Errorf("error = %v, want ErrNoMembers", err)
	}
}

func TestValidateExpense(t *testing.T) {
	valid := func() models.Expense {
		return models.Expense{
			ID:          "e1",
			Description: "Dinner",
			Amount:      d("100"),
			Payer:       "Bob",
			SplitType:   models.SplitCustom,
			Splits:      map[string]decimal.Decimal{"a": d("40"), "b": d("30"), "c": d("30")},
		}
	}

	tests := []struct {
		name    string
		mutate  func(e *models.Expense)
		wantErr error
	}{
		{"valid", func(e *models.Expense) {}, nil},
		{"within tolerance", func(e *models.Expense) { e.Splits["c"] = d("30.009") }, nil},
		{"blank description", func(e *models.Expense) { e.Description = "  " }, ErrMissingDescription},
		{"zero amount", func(e *models.Expense) { e.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(e *models.Expense) { e.Amount = d("-5") }, ErrInvalidAmount},
		{"unknown split type", func(e *models.Expense) { e.SplitType = "ratio" }, ErrUnknownSplitType},
		{"payer not a member", func(e *models.Expense) { e.Payer = "Mallory" }, ErrPayerNotMember},
		{"no splits", func(e *models.Expense) { e.Splits = nil }, ErrEmptySplits},
		{"unknown member", func(e *models.Expense) { e.Splits["zz"] = decimal.Zero }, ErrUnknownMember},
		{"negative share", func(e *models.Expense) {
			e.Splits["a"] = d("-10")
			e.Splits["b"] = d("80")
		}, ErrNegativeShare},
		{"over allocated", func(e *models.Expense) { e.Splits["a"] = d("40.02") }, ErrSplitMismatch},
		{"under allocated", func(e *models.Expense) { delete(e.Splits, "c") }, ErrSplitMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid()
			tt.mutate(&e)
			err := ValidateExpense(threeFriends(), e)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateExpense() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExpense() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildThenValidate_EqualSplitThirds(t *testing.T) {
	g := threeFriends()
	splits, err := BuildSplits(g, "Alice", d("100"), models.SplitEqual, nil)
	if err != nil {
		t.Fatalf("BuildSplits() error: %v", err)
	}
	e := models.Expense{
		Description: "Taxi",
		Amount:      d("100"),
		Payer:       "Alice",
		SplitType:   models.SplitEqual,
		Splits:      splits,
	}
	if err := ValidateExpense(g, e); err != nil {
		t.Errorf("ValidateExpense() error: %v", err)
	}
}

func TestBuildThenValidate_EqualSplitSharedMemberID(t *testing.T) {
	g := models.Group{
		ID:      "g1",
		Members: []models.Member{{ID: "x", Name: "Alice"}, {ID: "x", Name: "Bob"}},
	}
	splits, err := BuildSplits(g, "Alice", d("100"), models.SplitEqual, nil)
	if err != nil {
		t.Fatalf("BuildSplits() error: %v", err)
	}
	if len(splits) != 1 {
		t.Fatalf("got %d splits, want 1 shared entry", len(splits))
	}

	e := models.Expense{
		Description: "Groceries",
		Amount:      d("100"),
		Payer:       "Alice",
		SplitType:   models.SplitEqual,
		Splits:      splits,
	}
	if err := ValidateExpense(g, e); err != nil {
		t.Errorf("ValidateExpense() error: %v", err)
	}

	e.ID = "e1"
	g.Expenses = []models.Expense{e}
	balances := MemberBalances(g)
	if !balances[0].Balance.Equal(d("50")) || !balances[1].Balance.Equal(d("-50")) {
		t.Errorf("balances = %s / %s, want 50 / -50", balances[0].Balance, balances[1].Balance)
	}
}
