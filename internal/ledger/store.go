// Package ledger owns the collection of groups and their expenses.
// It is the only writer; balances are derived from its snapshots.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ErrGroupExists is returned by AddGroup when the group ID is already in use.
var ErrGroupExists = errors.New("group already exists")

// Options configures a Store. Every field is optional.
type Options struct {
	// Storage persists the group collection. Nil keeps it in memory only.
	Storage storage.Store

	// Key is the document key in Storage. Defaults to StorageKey.
	Key string

	// Publisher receives an event after every committed mutation.
	Publisher events.Publisher

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Store holds groups in most-recent-first order.
//
// Mutations are serialized and copy-on-write: each builds the next collection,
// persists it, and only then replaces the current one. Readers always get a
// deep copy of a fully committed state.
type Store struct {
	mu     sync.RWMutex
	groups []models.Group
	rev    uint64

	storage   storage.Store
	key       string
	publisher events.Publisher
	now       func() time.Time
	newID     func() string
}

// New creates an empty Store. Call Hydrate before serving queries when a
// Storage is configured.
func New(opts Options) *Store {
	s := &Store{
		groups:    []models.Group{},
		storage:   opts.Storage,
		key:       opts.Key,
		publisher: opts.Publisher,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.key == "" {
		s.key = StorageKey
	}
	if s.publisher == nil {
		s.publisher = events.Nop
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	return s
}

// Hydrate replaces the in-memory collection with the persisted one.
// A missing document leaves the store empty.
func (s *Store) Hydrate(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	data, err := s.storage.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("No persisted ledger found, starting empty", "key", s.key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	groups, err := decodeGroups(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range groups {
		s.rev++
		groups[i].Revision = s.rev
	}
	s.groups = groups

	slog.Info("Ledger hydrated", "key", s.key, "groups", len(groups))
	return nil
}

// Groups returns a snapshot of every group in stored order.
func (s *Store) Groups() []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Clone()
	}
	return out
}

// Group returns a snapshot of one group.
func (s *Store) Group(groupID string) (models.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(groupID); i >= 0 {
		return s.groups[i].Clone(), true
	}
	return models.Group{}, false
}

// Len returns the number of groups.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups)
}

// AddGroup inserts group at the front of the collection. Its expenses are
// always reset to empty; an empty ID is replaced with a generated one.
// A group whose ID is already taken is rejected with ErrGroupExists.
func (s *Store) AddGroup(ctx context.Context, group models.Group) (models.Group, error) {
	group = group.Clone()
	if group.ID == "" {
		group.ID = s.newID()
	}
	if group.Members == nil {
		group.Members = []models.Member{}
	}
	group.Expenses = []models.Expense{}

	s.mu.Lock()
	if s.indexOf(group.ID) >= 0 {
		s.mu.Unlock()
		return models.Group{}, fmt.Errorf("%w: %s", ErrGroupExists, group.ID)
	}
	group.Revision = s.rev + 1

	next := make([]models.Group, 0, len(s.groups)+1)
	next = append(next, group)
	next = append(next, s.groups...)

	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Group{}, err
	}
	s.mu.Unlock()

	s.publish(ctx, events.GroupCreated, group.ID, "", group.Revision)
	return group.Clone(), nil
}

// AddExpense appends expense to the group. It reports false, without error,
// when no group has the given ID. An empty expense ID is generated and a zero
// timestamp is set to now.
func (s *Store) AddExpense(ctx context.Context, groupID string, expense models.Expense) (models.Expense, bool, error) {
	expense = expense.Clone()
	if expense.ID == "" {
		expense.ID = s.newID()
	}
	if expense.Timestamp.IsZero() {
		expense.Timestamp = s.now().UTC()
	}

	s.mu.Lock()
	i := s.indexOf(groupID)
	if i < 0 {
		s.mu.Unlock()
		slog.Debug("AddExpense ignored, group not found", "group_id", groupID)
		return models.Expense{}, false, nil
	}

	updated := s.groups[i]
	expenses := make([]models.Expense, len(updated.Expenses), len(updated.Expenses)+1)
	copy(expenses, updated.Expenses)
	updated.Expenses = append(expenses, expense)
	updated.Revision = s.rev + 1

	next := s.replaced(i, updated)
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Expense{}, false, err
	}
	s.mu.Unlock()

	s.publish(ctx, events.ExpenseRecorded, groupID, expense.ID, updated.Revision)
	return expense.Clone(), true, nil
}

// DeleteGroup removes the group. Deleting a missing group is a no-op.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	s.mu.Lock()
	i := s.indexOf(groupID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	next := make([]models.Group, 0, len(s.groups)-1)
	next = append(next, s.groups[:i]...)
	next = append(next, s.groups[i+1:]...)

	rev := s.rev + 1
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(ctx, events.GroupDeleted, groupID, "", rev)
	return nil
}

// MarkExpenseAsSettled flags the expense as settled. Balances are unaffected.
// A missing group or expense is a no-op.
func (s *Store) MarkExpenseAsSettled(ctx context.Context, groupID, expenseID string) error {
	s.mu.Lock()
	i := s.indexOf(groupID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}

	updated := s.groups[i]
	j := -1
	for k := range updated.Expenses {
		if updated.Expenses[k].ID == expenseID {
			j = k
			break
		}
	}
	if j < 0 || updated.Expenses[j].Settled {
		s.mu.Unlock()
		return nil
	}

	expenses := make([]models.Expense, len(updated.Expenses))
	copy(expenses, updated.Expenses)
	expenses[j].Settled = true
	updated.Expenses = expenses
	updated.Revision = s.rev + 1

	next := s.replaced(i, updated)
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(ctx, events.ExpenseSettled, groupID, expenseID, updated.Revision)
	return nil
}

// indexOf must be called with mu held.
func (s *Store) indexOf(groupID string) int {
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			return i
		}
	}
	return -1
}

// replaced returns a copy of the collection with position i swapped for g.
func (s *Store) replaced(i int, g models.Group) []models.Group {
	next := make([]models.Group, len(s.groups))
	copy(next, s.groups)
	next[i] = g
	return next
}

// commit persists next and makes it current. Must be called with mu held.
// On error the current collection is left untouched. An empty collection
// removes the persisted document instead of saving an empty one.
func (s *Store) commit(ctx context.Context, next []models.Group) error {
	switch {
	case s.storage == nil:
	case len(next) == 0:
		if err := s.storage.Remove(ctx, s.key); err != nil {
			return fmt.Errorf("failed to remove ledger document: %w", err)
		}
	default:
		data, err := encodeGroups(next)
		if err != nil {
			return err
		}
		if err := s.storage.Save(ctx, s.key, data); err != nil {
			return fmt.Errorf("failed to persist ledger: %w", err)
		}
	}
	s.groups = next
	s.rev++
	return nil
}

func (s *Store) publish(ctx context.Context, kind events.Kind, groupID, expenseID string, rev uint64) {
	ev := events.Event{
		Kind:      kind,
		GroupID:   groupID,
		ExpenseID: expenseID,
		Revision:  rev,
		Timestamp: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		slog.Warn("Failed to publish ledger event",
			"kind", kind,
			"group_id", groupID,
			"error", err,
		)
	}
}
