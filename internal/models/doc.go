// Package models defines the core domain models for splitledger.
//
// # Stored Models
//
// These are owned by the ledger store and persisted as one JSON document:
//   - Group: a named set of members and the expenses shared among them
//   - Member: a participant, identified by id and display name together
//   - Expense: one payment with a payer and a split policy
//
// # Derived Models
//
// These are recomputed on every query and never persisted:
//   - Balance: one member's paid/owes/net position in a group
//   - Transaction: a per-expense debt edge between a payer and a debtor
//   - GroupBalance: one user's net position in one group
//   - CounterpartySummary: one user's position against another person across groups
//
// # Conventions
//
// 1. Amounts are decimal.Decimal; division keeps full precision and rounding to
// two places only happens when formatting for display (FormatAmount).
// 2. Payers are referenced by member name, splits by member id. This mirrors the
// persisted document shape and is kept as-is.
// 3. Relationships use id strings, never pointers.
package models
