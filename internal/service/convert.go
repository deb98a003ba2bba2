package service

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIGroup(g models.Group) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = &api.Member{Id: m.ID, Name: m.Name}
	}
	expenses := make([]*api.Expense, len(g.Expenses))
	for i, e := range g.Expenses {
		expenses[i] = toAPIExpense(e)
	}
	return &api.Group{
		Id:       g.ID,
		Name:     g.Name,
		Members:  members,
		Expenses: expenses,
	}
}

func toAPIExpense(e models.Expense) *api.Expense {
	return &api.Expense{
		Id:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Payer:       e.Payer,
		SplitType:   string(e.SplitType),
		Splits:      e.Splits,
		Timestamp:   e.Timestamp,
		Settled:     e.Settled,
	}
}

func toAPIBalances(balances []models.Balance) []*api.MemberBalance {
	out := make([]*api.MemberBalance, len(balances))
	for i, b := range balances {
		txs := make([]*api.Transaction, len(b.Transactions))
		for j, tx := range b.Transactions {
			txs[j] = &api.Transaction{From: tx.From, To: tx.To, Amount: tx.Amount}
		}
		out[i] = &api.MemberBalance{
			MemberId:     b.MemberID,
			Name:         b.Name,
			Paid:         b.Paid,
			Owes:         b.Owes,
			Balance:      b.Balance,
			Transactions: txs,
		}
	}
	return out
}

func toAPIGroupBalances(balances []models.GroupBalance) []*api.GroupBalance {
	out := make([]*api.GroupBalance, len(balances))
	for i, b := range balances {
		out[i] = &api.GroupBalance{
			GroupId:   b.GroupID,
			GroupName: b.GroupName,
			Balance:   b.Balance,
		}
	}
	return out
}

func toAPICounterparties(summaries []models.CounterpartySummary) []*api.Counterparty {
	out := make([]*api.Counterparty, len(summaries))
	for i, s := range summaries {
		groups := make([]*api.CounterpartyGroup, len(s.Groups))
		for j, g := range s.Groups {
			groups[j] = &api.CounterpartyGroup{
				GroupId:   g.GroupID,
				GroupName: g.GroupName,
				YouOwe:    g.YouOwe,
				TheyOwe:   g.TheyOwe,
				Net:       g.Net,
			}
		}
		out[i] = &api.Counterparty{
			Name:    s.Name,
			YouOwe:  s.YouOwe,
			TheyOwe: s.TheyOwe,
			Net:     s.Net,
			Groups:  groups,
		}
	}
	return out
}
