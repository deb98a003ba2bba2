package models

import "github.com/shopspring/decimal"

// Transaction is a directional debt edge produced by one expense split.
// Exactly one of From or To is set: From on the payer's record (who owes the
// payer), To on the debtor's record (whom the debtor owes).
type Transaction struct {
	From   string          `json:"from,omitempty"`
	To     string          `json:"to,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Balance is one member's position in a group.
type Balance struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Paid     decimal.Decimal `json:"paid"`
	Owes     decimal.Decimal `json:"owes"`
	// Balance is Paid - Owes. Positive = owed money, negative = owes money.
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
}

// GroupBalance is one user's net balance within one group.
type GroupBalance struct {
	GroupID   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	Balance   decimal.Decimal `json:"balance"`
}

// CounterpartyGroup is one group's contribution to a CounterpartySummary.
type CounterpartyGroup struct {
	GroupID   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	YouOwe    decimal.Decimal `json:"youOwe"`
	TheyOwe   decimal.Decimal `json:"theyOwe"`
	Net       decimal.Decimal `json:"net"`
}

// CounterpartySummary is what a user and one other person owe each other,
// totalled across every group they share.
type CounterpartySummary struct {
	Name    string          `json:"name"`
	YouOwe  decimal.Decimal `json:"youOwe"`
	TheyOwe decimal.Decimal `json:"theyOwe"`
	// Net is TheyOwe - YouOwe. Positive = the counterparty owes the user.
	Net    decimal.Decimal     `json:"net"`
	Groups []CounterpartyGroup `json:"groups"`
}
