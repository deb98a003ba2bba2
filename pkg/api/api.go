// Package api defines the request and response messages of the
// splitledger.v1.LedgerService RPC API. Messages are JSON encoded.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type Member struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type Expense struct {
	Id          string                     `json:"id"`
	Description string                     `json:"description"`
	Amount      decimal.Decimal            `json:"amount"`
	Payer       string                     `json:"payer"`
	SplitType   string                     `json:"splitType"`
	Splits      map[string]decimal.Decimal `json:"splits"`
	Timestamp   time.Time                  `json:"timestamp"`
	Settled     bool                       `json:"settled"`
}

type Group struct {
	Id       string     `json:"id"`
	Name     string     `json:"name"`
	Members  []*Member  `json:"members"`
	Expenses []*Expense `json:"expenses"`
}

type Transaction struct {
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

type MemberBalance struct {
	MemberId     string          `json:"memberId"`
	Name         string          `json:"name"`
	Paid         decimal.Decimal `json:"paid"`
	Owes         decimal.Decimal `json:"owes"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []*Transaction  `json:"transactions"`
}

type GroupBalance struct {
	GroupId   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	Balance   decimal.Decimal `json:"balance"`
}

type CounterpartyGroup struct {
	GroupId   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	YouOwe    decimal.Decimal `json:"youOwe"`
	TheyOwe   decimal.Decimal `json:"theyOwe"`
	Net       decimal.Decimal `json:"net"`
}

type Counterparty struct {
	Name    string               `json:"name"`
	YouOwe  decimal.Decimal      `json:"youOwe"`
	TheyOwe decimal.Decimal      `json:"theyOwe"`
	Net     decimal.Decimal      `json:"net"`
	Groups  []*CounterpartyGroup `json:"groups"`
}

// CreateGroup

type CreateGroupRequest struct {
	// Id is optional; one is generated when empty.
	Id      string    `json:"id,omitempty"`
	Name    string    `json:"name"`
	Members []*Member `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

// RecordExpense

type RecordExpenseRequest struct {
	GroupId     string          `json:"groupId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	// Payer is the paying member's name. Defaults to the caller.
	Payer     string `json:"payer,omitempty"`
	SplitType string `json:"splitType"`
	// Splits holds member id -> share for custom splits. The payer's share
	// is derived from the amount when omitted.
	Splits map[string]decimal.Decimal `json:"splits,omitempty"`
}

type RecordExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// DeleteGroup

type DeleteGroupRequest struct {
	GroupId string `json:"groupId"`
}

type DeleteGroupResponse struct{}

// MarkExpenseSettled

type MarkExpenseSettledRequest struct {
	GroupId   string `json:"groupId"`
	ExpenseId string `json:"expenseId"`
}

type MarkExpenseSettledResponse struct{}

// ListGroups

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

// GetGroup

type GetGroupRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupResponse struct {
	// Group is nil when no group has the requested id.
	Group *Group `json:"group"`
}

// GetGroupBalances

type GetGroupBalancesRequest struct {
	GroupId string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances []*MemberBalance `json:"balances"`
}

// GetUserTotalBalance

type GetUserTotalBalanceRequest struct {
	// UserName defaults to the caller's display name.
	UserName string `json:"userName,omitempty"`
}

type GetUserTotalBalanceResponse struct {
	UserName   string          `json:"userName"`
	Balance    decimal.Decimal `json:"balance"`
	Owed       decimal.Decimal `json:"owed"`
	Receivable decimal.Decimal `json:"receivable"`
}

// GetUserGroupBalances

type GetUserGroupBalancesRequest struct {
	UserName string `json:"userName,omitempty"`
}

type GetUserGroupBalancesResponse struct {
	UserName string          `json:"userName"`
	Groups   []*GroupBalance `json:"groups"`
}

// GetCounterpartySummary

type GetCounterpartySummaryRequest struct {
	UserName string `json:"userName,omitempty"`
}

type GetCounterpartySummaryResponse struct {
	UserName       string          `json:"userName"`
	Counterparties []*Counterparty `json:"counterparties"`
}
