package calculator

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalances computes one Balance per group member, in member order.
// It is a pure function of the group: calling it twice on an unchanged group
// yields identical output.
//
// Algorithm:
//   - For each expense (stored order): the first member named like the payer
//     gets paid += amount. An unknown payer loses the credit.
//   - equal: every member owes amount / memberCount, whoever the split map names.
//   - custom: each member whose id appears in the splits owes that share.
//     Members missing from the splits owe nothing for that expense.
//   - Each non-payer share records {from: debtor} on the payer and {to: payer}
//     on the debtor. Transactions are a display log and are never netted.
//   - balance = paid - owes
func MemberBalances(group models.Group) []models.Balance {
	balances := make([]models.Balance, len(group.Members))
	for i, m := range group.Members {
		balances[i] = models.Balance{
			MemberID:     m.ID,
			Name:         m.Name,
			Paid:         decimal.Zero,
			Owes:         decimal.Zero,
			Transactions: []models.Transaction{},
		}
	}
	if len(balances) == 0 {
		return balances
	}

	memberCount := decimal.NewFromInt(int64(len(balances)))

	for _, expense := range group.Expenses {
		payer := indexByName(balances, expense.Payer)
		if payer >= 0 {
			balances[payer].Paid = balances[payer].Paid.Add(expense.Amount)
		} else {
			slog.Debug("Expense payer is not a group member",
				"group_id", group.ID,
				"expense_id", expense.ID,
				"payer", expense.Payer,
			)
		}

		switch expense.SplitType {
		case models.SplitEqual:
			share := expense.Amount.Div(memberCount)
			for i := range balances {
				balances[i].Owes = balances[i].Owes.Add(share)
				if balances[i].Name != expense.Payer {
					recordDebt(balances, payer, i, expense.Payer, share)
				}
			}

		case models.SplitCustom:
			// The first member carrying an id takes that id's share.
			seen := make(map[string]bool, len(balances))
			matched := 0
			for i := range balances {
				id := balances[i].MemberID
				if seen[id] {
					continue
				}
				seen[id] = true

				share, ok := expense.Splits[id]
				if !ok {
					continue
				}
				matched++
				balances[i].Owes = balances[i].Owes.Add(share)
				if balances[i].Name != expense.Payer {
					recordDebt(balances, payer, i, expense.Payer, share)
				}
			}
			if matched < len(expense.Splits) {
				slog.Debug("Expense splits reference unknown members",
					"group_id", group.ID,
					"expense_id", expense.ID,
					"unmatched", len(expense.Splits)-matched,
				)
			}
		}
	}

	for i := range balances {
		balances[i].Balance = balances[i].Paid.Sub(balances[i].Owes)
	}

	return balances
}

// recordDebt appends the from/to transaction pair for one share.
// payer is -1 when the payer is not a member; only the debtor side is kept then.
func recordDebt(balances []models.Balance, payer, debtor int, payerName string, share decimal.Decimal) {
	if payer >= 0 {
		balances[payer].Transactions = append(balances[payer].Transactions, models.Transaction{
			From:   balances[debtor].Name,
			Amount: share,
		})
	}
	balances[debtor].Transactions = append(balances[debtor].Transactions, models.Transaction{
		To:     payerName,
		Amount: share,
	})
}

func indexByName(balances []models.Balance, name string) int {
	for i := range balances {
		if balances[i].Name == name {
			return i
		}
	}
	return -1
}

// BalanceFor returns the first balance whose name matches.
func BalanceFor(balances []models.Balance, name string) (models.Balance, bool) {
	if i := indexByName(balances, name); i >= 0 {
		return balances[i], true
	}
	return models.Balance{}, false
}
