package notifications

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskhub/internal/keys"
	"github.com/nhle/taskhub/internal/model"
)

func pageOfNotifications(page, totalPages int) model.Page[model.Notification] {
	return model.Page[model.Notification]{
		Data: []model.Notification{
			{ID: page, Message: fmt.Sprintf("notification on page %d", page)},
		},
		Total:      totalPages * 10,
		Page:       page,
		Limit:      10,
		TotalPages: totalPages,
	}
}

func TestSupersededPageResponseIsDiscarded(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 10, 80, 24)

	m, _ = m.Update(LoadedMsg{Filters: m.filters, Page: pageOfNotifications(1, 3)})
	require.Equal(t, 1, m.page.Page)

	// Move to page 2 and apply its response.
	issuedFor := m.filters
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	require.Equal(t, 2, m.filters.Page)

	m, _ = m.Update(LoadedMsg{Filters: m.filters, Page: pageOfNotifications(2, 3)})
	require.Equal(t, 2, m.page.Page)

	// Page 1's slow response resolves last; it must not overwrite page 2.
	m, _ = m.Update(LoadedMsg{Filters: issuedFor, Page: pageOfNotifications(1, 3)})

	assert.Equal(t, 2, m.page.Page)
}

func TestSupersededFilterResponseIsDiscarded(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 10, 80, 24)

	// The unread-only filter is toggled on while the unfiltered fetch is
	// still in flight.
	allFilters := m.filters
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'f'}})
	require.NotNil(t, m.filters.IsRead)

	m, _ = m.Update(LoadedMsg{Filters: allFilters, Page: pageOfNotifications(1, 3)})

	assert.Zero(t, m.page.Total, "unfiltered results must not land after filtering")
}
