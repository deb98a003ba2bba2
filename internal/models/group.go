package models

import (
	"encoding/json"
	"strings"
)

// Member is a participant in a group.
//
// The id alone is not guaranteed unique across groups and contacts, so the
// pair (ID, Name) is the member's identity.
type Member struct {
	// ID is the member's id, usually the user or contact id.
	ID string `json:"id"`

	// Name is the display name. Expense payers reference members by this name.
	Name string `json:"name"`
}

// Key returns the composite identity "id-name".
func (m Member) Key() string {
	return m.ID + "-" + m.Name
}

// Group is a named collection of members and the expenses shared among them.
// Members are fixed when the group is created.
type Group struct {
	// ID is the unique identifier for the group (UUID format unless supplied).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Goa Trip", "Flatmates").
	Name string `json:"name"`

	// Members is the ordered member list.
	Members []Member `json:"members"`

	// Expenses is the ordered expense list, in the order they were recorded.
	Expenses []Expense `json:"expenses"`

	// Revision is bumped by the ledger store whenever the group changes.
	// It is process-local and not persisted.
	Revision uint64 `json:"-"`

	// extra holds document fields this server does not model, such as the
	// client-side "balance", so they survive a load and save.
	extra map[string]json.RawMessage
}

// groupJSON has Group's fields without its JSON methods.
type groupJSON Group

// MarshalJSON encodes the group and any unmodelled fields read with it.
func (g Group) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(groupJSON(g))
	if err != nil || len(g.extra) == 0 {
		return data, err
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range g.extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes the group and keeps fields it does not model.
func (g *Group) UnmarshalJSON(data []byte) error {
	var known groupJSON
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for k := range fields {
		if isGroupField(k) {
			delete(fields, k)
		}
	}

	*g = Group(known)
	if len(fields) > 0 {
		g.extra = fields
	}
	return nil
}

// isGroupField reports whether encoding/json would decode key into a
// modelled field. Matching is case-insensitive, as in encoding/json.
func isGroupField(key string) bool {
	for _, name := range []string{"id", "name", "members", "expenses"} {
		if strings.EqualFold(key, name) {
			return true
		}
	}
	return false
}

// MemberByName returns the first member whose name matches.
func (g *Group) MemberByName(name string) (Member, bool) {
	for _, m := range g.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// MemberByID returns the first member whose id matches.
func (g *Group) MemberByID(id string) (Member, bool) {
	for _, m := range g.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// Clone returns a deep copy of the group.
func (g Group) Clone() Group {
	out := g
	if g.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(g.extra))
		for k, v := range g.extra {
			out.extra[k] = v
		}
	}
	if g.Members != nil {
		out.Members = make([]Member, len(g.Members))
		copy(out.Members, g.Members)
	}
	if g.Expenses != nil {
		out.Expenses = make([]Expense, len(g.Expenses))
		for i, e := range g.Expenses {
			out.Expenses[i] = e.Clone()
		}
	}
	return out
}
