package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyEqualityIsOrderIndependent(t *testing.T) {
	a := NewKey(ResourceTasks, map[string]string{
		"search": "milk",
		"page":   "2",
		"limit":  "10",
	})
	b := NewKey(ResourceTasks, map[string]string{
		"limit":  "10",
		"page":   "2",
		"search": "milk",
	})

	assert.Equal(t, a, b)
	assert.Equal(t, "limit=10&page=2&search=milk", a.Signature)
}

func TestKeyOmittedFieldsMatchEmptyMap(t *testing.T) {
	a := NewKey(ResourceTasks, map[string]string{})
	b := NewKey(ResourceTasks, nil)

	assert.Equal(t, a, b)
	assert.Empty(t, a.Signature)
}

func TestKeyDifferentValuesDiffer(t *testing.T) {
	a := NewKey(ResourceTasks, map[string]string{"page": "1"})
	b := NewKey(ResourceTasks, map[string]string{"page": "2"})

	assert.NotEqual(t, a, b)
}

func TestGetUnknownKeyIsIdle(t *testing.T) {
	c := New()

	entry := c.Get(IDKey(ResourceTask, 1))
	assert.Equal(t, StatusIdle, entry.Status)
	assert.False(t, entry.Fresh())
}

func TestCompleteAppliesInIssueOrder(t *testing.T) {
	c := New()
	key := NewKey(ResourceTasks, nil)

	// R1 issued, then R2; R2 resolves first.
	t1 := c.Begin(key)
	t2 := c.Begin(key)

	require.True(t, c.Complete(t2, "fresh"))

	// R1 resolving late must be discarded.
	require.False(t, c.Complete(t1, "stale"))

	entry := c.Get(key)
	assert.Equal(t, "fresh", entry.Value)
	assert.True(t, entry.Fresh())
}

func TestFailKeepsPreviousValue(t *testing.T) {
	c := New()
	key := NewKey(ResourceSubscriptions, nil)

	c.Set(key, "cached")

	ticket := c.Begin(key)
	c.Fail(ticket)

	entry := c.Get(key)
	assert.Equal(t, StatusError, entry.Status)
	assert.Equal(t, "cached", entry.Value)
	assert.False(t, entry.Fresh())
}

func TestInvalidateMarksStaleWithoutEvicting(t *testing.T) {
	c := New()
	allTasks := NewKey(ResourceTasks, nil)
	byID := IDKey(ResourceTask, 7)
	subs := NewKey(ResourceSubscriptions, nil)

	c.Set(allTasks, "tasks")
	c.Set(byID, "task-7")
	c.Set(subs, "subs")

	c.Invalidate(ByResource(ResourceTasks))
	c.Invalidate(ByKey(byID))

	assert.False(t, c.Get(allTasks).Fresh())
	assert.Equal(t, "tasks", c.Get(allTasks).Value)
	assert.False(t, c.Get(byID).Fresh())
	assert.True(t, c.Get(subs).Fresh())
}

func TestInvalidateDoesNotBlockRefetch(t *testing.T) {
	c := New()
	key := NewKey(ResourceTasks, nil)

	c.Set(key, "old")
	c.Invalidate(ByResource(ResourceTasks))

	ticket := c.Begin(key)
	require.True(t, c.Complete(ticket, "new"))

	entry := c.Get(key)
	assert.True(t, entry.Fresh())
	assert.Equal(t, "new", entry.Value)
}

func TestResetAllDropsEntries(t *testing.T) {
	c := New()
	c.Set(NewKey(ResourceTasks, nil), "tasks")
	c.Set(IDKey(ResourceTask, 1), "task-1")

	c.ResetAll()

	assert.Zero(t, c.Len())
	assert.Equal(t, StatusIdle, c.Get(NewKey(ResourceTasks, nil)).Status)
}

func TestResetAllInvalidatesInFlightTickets(t *testing.T) {
	c := New()
	key := NewKey(ResourceNotifications, nil)

	ticket := c.Begin(key)
	c.ResetAll()

	// A response from before the reset must not repopulate the cache.
	require.False(t, c.Complete(ticket, "cross-session"))
	assert.Zero(t, c.Len())
}

func TestByResourceMatchesAnyListed(t *testing.T) {
	match := ByResource(ResourceTasks, ResourceMyTasks)

	assert.True(t, match(NewKey(ResourceTasks, map[string]string{"page": "3"})))
	assert.True(t, match(NewKey(ResourceMyTasks, nil)))
	assert.False(t, match(NewKey(ResourcePublicTasks, nil)))
}
