package record

import (
	"sync"
	"time"

	"github.com/Keksclan/goScoreRestorer/store"
)

// Cache holds saved records keyed by normalized callsign. All methods are
// safe for concurrent use; each operation runs under a single lock and never
// calls out while holding it.
type Cache struct {
	mu  sync.Mutex
	cfg config
}

// New creates a Cache.
func New(opts ...Option) *Cache {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.store == nil {
		cfg.store = store.NewMap[Record]()
	}
	return &Cache{cfg: cfg}
}

// Depart saves the departing player's counters unless a live record for the
// same callsign is still pending. An expired record is replaced.
func (c *Cache) Depart(d Departure) DepartOutcome {
	rec := Record{
		Key:       Normalize(d.Callsign),
		Address:   d.Address,
		Wins:      d.Wins,
		Losses:    d.Losses,
		TeamKills: d.TeamKills,
		SavedAt:   c.at(d.At),
	}

	ttl := c.cfg.ttl()

	c.mu.Lock()
	defer c.mu.Unlock()

	old, exists := c.cfg.store.Load(rec.Key)
	if exists && old.expired(rec.SavedAt, ttl) {
		c.cfg.store.Delete(rec.Key)
		exists = false
	}
	if exists && !c.cfg.overwrite {
		return Duplicate
	}
	if rec.Empty() && !c.cfg.keepEmpty {
		return SkippedEmpty
	}
	if !c.cfg.store.Store(rec.Key, rec) {
		return Dropped
	}
	if exists {
		return Overwritten
	}
	return Saved
}

// Arrive checks whether the arriving player has a record to claim. The
// address is verified first, then expiry; a restored record is removed.
func (c *Cache) Arrive(a Arrival) ArriveResult {
	key := Normalize(a.Callsign)
	now := c.at(a.At)
	ttl := c.cfg.ttl()

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.cfg.store.Load(key)
	if !ok {
		return ArriveResult{Outcome: NoRecord}
	}
	if !c.cfg.sameHost(rec.Address, a.Address) {
		return ArriveResult{Outcome: IdentityMismatch}
	}
	if rec.expired(now, ttl) {
		c.cfg.store.Delete(key)
		return ArriveResult{Outcome: Expired}
	}
	if a.Observer {
		return ArriveResult{Outcome: DeferredRestore, Record: rec}
	}

	c.cfg.store.Delete(key)
	return ArriveResult{Outcome: Restored, Record: rec}
}

// Peek returns a copy of the record stored for callsign without checking
// address or expiry and without changing anything.
func (c *Cache) Peek(callsign string) (Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.store.Load(Normalize(callsign))
}

// Len returns the number of stored records, including expired ones that
// have not been looked up yet.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.store.Len()
}

// Flush discards every record.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.store.Clear()
}

// TTL returns the current restore window.
func (c *Cache) TTL() time.Duration {
	return c.cfg.ttl()
}

func (c *Cache) at(t time.Time) time.Time {
	if t.IsZero() {
		return c.cfg.clock()
	}
	return t
}
