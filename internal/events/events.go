// Package events carries notifications about ledger mutations to
// interested parties (balance cache, message broker).
package events

import (
	"context"
	"errors"
	"time"
)

// Kind names a ledger mutation.
type Kind string

const (
	GroupCreated    Kind = "group.created"
	ExpenseRecorded Kind = "expense.recorded"
	GroupDeleted    Kind = "group.deleted"
	ExpenseSettled  Kind = "expense.settled"
)

// Event describes one committed ledger mutation.
type Event struct {
	Kind      Kind      `json:"kind"`
	GroupID   string    `json:"groupId"`
	ExpenseID string    `json:"expenseId,omitempty"`
	Revision  uint64    `json:"revision"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher receives ledger events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, ev Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Nop discards every event.
var Nop Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// Multi returns a Publisher that delivers to every non-nil publisher in order.
// All publishers are tried; their errors are joined.
func Multi(publishers ...Publisher) Publisher {
	var list []Publisher
	for _, p := range publishers {
		if p != nil {
			list = append(list, p)
		}
	}
	return PublisherFunc(func(ctx context.Context, ev Event) error {
		var errs []error
		for _, p := range list {
			if err := p.Publish(ctx, ev); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
