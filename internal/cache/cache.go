// Package cache holds server-resource query results in memory, keyed by
// resource type plus a structural filter signature. Entries are marked
// stale by mutations and refetched on the next read; the whole cache is
// dropped on every session transition so data from one identity never
// leaks into another.
package cache

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Resource identifies a cached query shape.
type Resource string

const (
	ResourceTasks           Resource = "tasks"
	ResourceMyTasks         Resource = "my-tasks"
	ResourcePublicTasks     Resource = "public-tasks"
	ResourceTask            Resource = "task"
	ResourceSubscriptions   Resource = "subscriptions"
	ResourceTaskSubscribers Resource = "task-subscribers"
	ResourceNotifications   Resource = "notifications"
	ResourceUnreadCount     Resource = "notifications-unread-count"
)

// Key addresses one cache entry. Two keys built from filter maps with the
// same field values compare equal regardless of construction order.
type Key struct {
	Resource  Resource
	Signature string
}

// NewKey builds a key from a resource and a normalized parameter map.
// Parameters are sorted by name, so the signature is order-independent.
func NewKey(resource Resource, params map[string]string) Key {
	if len(params) == 0 {
		return Key{Resource: resource}
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+params[name])
	}

	return Key{Resource: resource, Signature: strings.Join(parts, "&")}
}

// IDKey builds a key for a single-resource query addressed by numeric ID.
func IDKey(resource Resource, id int) Key {
	return Key{Resource: resource, Signature: strconv.Itoa(id)}
}

// Status describes an entry's lifecycle position.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusError
)

// Entry is the caller-visible view of a cache slot.
type Entry struct {
	Value         any
	Status        Status
	Stale         bool
	LastFetchedAt time.Time
}

// Fresh reports whether the entry holds a value that can be served
// without refetching.
func (e Entry) Fresh() bool {
	return e.Status == StatusReady && !e.Stale
}

// slot is the internal entry state. appliedSeq tracks the newest request
// whose response has been applied, so an older in-flight response can
// never overwrite a fresher one.
type slot struct {
	entry      Entry
	issuedSeq  uint64
	appliedSeq uint64
}

// Ticket tags one in-flight request for a key. Responses are applied
// through the ticket so the cache can discard superseded or cross-session
// results.
type Ticket struct {
	key Key
	gen uint64
	seq uint64
}

// Matcher selects keys for invalidation.
type Matcher func(Key) bool

// ByResource matches every key of any of the given resources.
func ByResource(resources ...Resource) Matcher {
	return func(k Key) bool {
		for _, r := range resources {
			if k.Resource == r {
				return true
			}
		}
		return false
	}
}

// ByKey matches exactly one key.
func ByKey(key Key) Matcher {
	return func(k Key) bool { return k == key }
}

// Cache is the process-wide resource cache. All operations are single
// critical sections, so a reader never observes a half-applied update.
type Cache struct {
	mu    sync.Mutex
	slots map[Key]*slot
	gen   uint64
	now   func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		slots: make(map[Key]*slot),
		now:   time.Now,
	}
}

// Get returns the entry for key. A zero-value idle entry is returned for
// keys never written.
func (c *Cache) Get(key Key) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.slots[key]; ok {
		return s.entry
	}
	return Entry{Status: StatusIdle}
}

// Begin registers a new in-flight request for key and returns its ticket.
// The entry keeps any previous value while loading.
func (c *Cache) Begin(key Key) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slot(key)
	s.issuedSeq++
	s.entry.Status = StatusLoading

	return Ticket{key: key, gen: c.gen, seq: s.issuedSeq}
}

// Complete applies a response for the request identified by t. It reports
// whether the value was applied; responses from a superseded request or
// from before a reset are discarded.
func (c *Cache) Complete(t Ticket, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.gen != c.gen {
		return false
	}

	s := c.slot(t.key)
	if t.seq <= s.appliedSeq {
		return false
	}

	s.appliedSeq = t.seq
	s.entry = Entry{
		Value:         value,
		Status:        StatusReady,
		LastFetchedAt: c.now(),
	}
	return true
}

// Fail records a failed request for the ticket. The previous value, if
// any, is kept so the view can keep rendering it alongside the error.
func (c *Cache) Fail(t Ticket) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.gen != c.gen {
		return
	}

	s := c.slot(t.key)
	if t.seq <= s.appliedSeq {
		return
	}

	s.appliedSeq = t.seq
	s.entry.Status = StatusError
}

// Set stores a value directly, superseding any in-flight requests.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.slot(key)
	s.issuedSeq++
	s.appliedSeq = s.issuedSeq
	s.entry = Entry{
		Value:         value,
		Status:        StatusReady,
		LastFetchedAt: c.now(),
	}
}

// Invalidate marks every entry whose key matches as stale. Values stay in
// memory and in-flight reads are not interrupted; the next read refetches.
func (c *Cache) Invalidate(match Matcher) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, s := range c.slots {
		if match(key) {
			s.entry.Stale = true
		}
	}
}

// ResetAll drops every entry and invalidates all outstanding tickets.
// Called exactly on session transitions.
func (c *Cache) ResetAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slots = make(map[Key]*slot)
	c.gen++
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// slot returns the slot for key, creating it if needed. Caller holds mu.
func (c *Cache) slot(key Key) *slot {
	s, ok := c.slots[key]
	if !ok {
		s = &slot{entry: Entry{Status: StatusIdle}}
		c.slots[key] = s
	}
	return s
}
