// Package aggregate rolls per-group balances up to a single user's view:
// their balance in each group, across all groups, and against each person
// they share expenses with.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// BalanceFunc computes the member balances of one group.
type BalanceFunc func(models.Group) []models.Balance

// Aggregator answers per-user balance queries over a collection of groups.
type Aggregator struct {
	balances BalanceFunc
}

// New creates an Aggregator. A nil fn uses calculator.MemberBalances.
func New(fn BalanceFunc) *Aggregator {
	if fn == nil {
		fn = calculator.MemberBalances
	}
	return &Aggregator{balances: fn}
}

// userBalance is the user's balance within one group, 0 if not a member.
func (a *Aggregator) userBalance(group models.Group, userName string) decimal.Decimal {
	if b, ok := calculator.BalanceFor(a.balances(group), userName); ok {
		return b.Balance
	}
	return decimal.Zero
}

// TotalBalanceForUser sums the user's balance over every group.
func (a *Aggregator) TotalBalanceForUser(groups []models.Group, userName string) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(a.userBalance(g, userName))
	}
	return total
}

// PerGroupBalancesForUser returns the user's balance in every group, in
// stored group order. Groups the user is not in report 0.
func (a *Aggregator) PerGroupBalancesForUser(groups []models.Group, userName string) []models.GroupBalance {
	out := make([]models.GroupBalance, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.GroupBalance{
			GroupID:   g.ID,
			GroupName: g.Name,
			Balance:   a.userBalance(g, userName),
		})
	}
	return out
}

// OwedAndReceivable splits per-group balances into the total the user owes
// (sum of negative balances) and the total owed to them (sum of positive ones).
func OwedAndReceivable(balances []models.GroupBalance) (owed, receivable decimal.Decimal) {
	owed, receivable = decimal.Zero, decimal.Zero
	for _, b := range balances {
		switch {
		case b.Balance.IsNegative():
			owed = owed.Add(b.Balance)
		case b.Balance.IsPositive():
			receivable = receivable.Add(b.Balance)
		}
	}
	return owed, receivable
}

// PerCounterpartySummary reports, for every other person the user shares a
// group with, what each owes the other. It walks the raw expense splits rather
// than the calculator output:
//
//   - user paid and the counterparty has a nonzero split: they owe that split
//   - otherwise, counterparty paid and the user has a nonzero split: the user
//     owes that split
//
// Counterparties are keyed by name across groups. People with nothing owed
// either way are left out; the rest are ordered by descending |net|.
func PerCounterpartySummary(groups []models.Group, userName string) []models.CounterpartySummary {
	byName := make(map[string]*models.CounterpartySummary)
	var order []string

	for _, g := range groups {
		if len(g.Members) == 0 {
			continue
		}
		user, userInGroup := g.MemberByName(userName)

		for _, member := range g.Members {
			if member.Name == userName {
				continue
			}

			youOwe, theyOwe := decimal.Zero, decimal.Zero
			for _, e := range g.Expenses {
				if len(e.Splits) == 0 {
					continue
				}
				if share, ok := e.Splits[member.ID]; e.Payer == userName && ok && !share.IsZero() {
					theyOwe = theyOwe.Add(share)
				} else if e.Payer == member.Name && userInGroup && user.ID != "" {
					if share, ok := e.Splits[user.ID]; ok && !share.IsZero() {
						youOwe = youOwe.Add(share)
					}
				}
			}

			if !youOwe.IsPositive() && !theyOwe.IsPositive() {
				continue
			}

			summary, ok := byName[member.Name]
			if !ok {
				summary = &models.CounterpartySummary{
					Name:    member.Name,
					YouOwe:  decimal.Zero,
					TheyOwe: decimal.Zero,
					Net:     decimal.Zero,
				}
				byName[member.Name] = summary
				order = append(order, member.Name)
			}

			net := theyOwe.Sub(youOwe)
			summary.YouOwe = summary.YouOwe.Add(youOwe)
			summary.TheyOwe = summary.TheyOwe.Add(theyOwe)
			summary.Net = summary.Net.Add(net)
			summary.Groups = append(summary.Groups, models.CounterpartyGroup{
				GroupID:   g.ID,
				GroupName: g.Name,
				YouOwe:    youOwe,
				TheyOwe:   theyOwe,
				Net:       net,
			})
		}
	}

	out := make([]models.CounterpartySummary, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Net.Abs().GreaterThan(out[j].Net.Abs())
	})
	return out
}
