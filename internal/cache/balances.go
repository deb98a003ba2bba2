package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/models"
)

// BalanceCache memoizes member balances per group.
//
// Entries are keyed by group ID and tagged with the group revision they were
// computed from, so a hit is always identical to a fresh computation. Groups
// with revision 0 did not come from the ledger store and are never cached.
// Returned slices are shared and must not be modified.
type BalanceCache struct {
	lru     *LRU[cachedBalances]
	compute func(models.Group) []models.Balance

	// OnLookup, when set, is called with the outcome of every lookup.
	OnLookup func(hit bool)
}

type cachedBalances struct {
	revision uint64
	balances []models.Balance
}

var _ events.Publisher = (*BalanceCache)(nil)

// NewBalanceCache creates a cache for up to size groups, each kept for ttl.
func NewBalanceCache(size int, ttl time.Duration, compute func(models.Group) []models.Balance) *BalanceCache {
	return &BalanceCache{
		lru:     NewLRU[cachedBalances](size, ttl),
		compute: compute,
	}
}

// Balances returns the member balances of g, computing them on a miss.
func (c *BalanceCache) Balances(g models.Group) []models.Balance {
	if g.Revision == 0 {
		return c.compute(g)
	}

	if cached, ok := c.lru.Get(g.ID); ok && cached.revision == g.Revision {
		c.observe(true)
		return cached.balances
	}
	c.observe(false)

	balances := c.compute(g)
	c.lru.Set(g.ID, cachedBalances{revision: g.Revision, balances: balances})
	return balances
}

// Forget drops the cached balances of a group.
func (c *BalanceCache) Forget(groupID string) {
	c.lru.Delete(groupID)
}

// Publish invalidates the group named by a ledger event.
func (c *BalanceCache) Publish(ctx context.Context, ev events.Event) error {
	c.Forget(ev.GroupID)
	return nil
}

// Len returns the number of cached groups.
func (c *BalanceCache) Len() int {
	return c.lru.Len()
}

// RunJanitor removes expired entries every interval until ctx is done.
func (c *BalanceCache) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := c.lru.CleanExpired(); n > 0 {
				slog.Debug("Expired balance cache entries removed", "count", n)
			}
		}
	}
}

func (c *BalanceCache) observe(hit bool) {
	if c.OnLookup != nil {
		c.OnLookup(hit)
	}
}
