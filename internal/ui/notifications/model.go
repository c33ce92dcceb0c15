package notifications

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskhub/internal/keys"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// LoadedMsg is sent when a page of notifications has been fetched. It
// carries the filters the fetch was issued for, so a response for a
// filter the user has already left is never applied.
type LoadedMsg struct {
	Filters model.NotificationFilters
	Page    model.Page[model.Notification]
}

// MarkReadRequestMsg asks the root app to mark one notification read.
type MarkReadRequestMsg struct {
	NotificationID int
}

// MarkAllReadRequestMsg asks the root app to mark everything read.
type MarkAllReadRequestMsg struct{}

// DeleteRequestMsg asks the root app to delete one notification.
type DeleteRequestMsg struct {
	NotificationID int
}

// FilterChangedMsg is emitted when the read-state filter toggles, so the
// root app reloads with the new filter.
type FilterChangedMsg struct {
	Filters model.NotificationFilters
}

// item wraps a notification for the bubbles list.
type item struct {
	notification model.Notification
}

func (i item) FilterValue() string { return i.notification.Message }

// delegate renders notification rows.
type delegate struct{}

func (d delegate) Height() int                             { return 1 }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	ni, ok := li.(item)
	if !ok {
		return
	}
	n := ni.notification

	marker := "●"
	if n.IsRead {
		marker = " "
	}

	kind := theme.NotificationStyle(string(n.Kind)).Render(string(n.Kind))
	row := fmt.Sprintf("%s %s %s", marker, kind, n.Message)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(row))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(row))
}

// Model is the notification center view.
type Model struct {
	list    list.Model
	keys    *keys.KeyMap
	filters model.NotificationFilters
	page    model.Page[model.Notification]
	width   int
	height  int
}

// New creates a new notifications view model.
func New(k *keys.KeyMap, pageSize, width, height int) Model {
	l := list.New([]list.Item{}, delegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:    l,
		keys:    k,
		filters: model.NotificationFilters{Page: 1, Limit: pageSize},
		width:   width,
		height:  height,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

// Filters returns the active notification filters.
func (m Model) Filters() model.NotificationFilters {
	return m.filters
}

// selected returns the notification under the cursor.
func (m Model) selected() (model.Notification, bool) {
	li, ok := m.list.SelectedItem().(item)
	if !ok {
		return model.Notification{}, false
	}
	return li.notification, true
}

// Update handles messages for the notifications view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Filters != m.filters {
			// A response for a filter the user has already left.
			return m, nil
		}
		m.page = msg.Page
		items := make([]list.Item, len(msg.Page.Data))
		for i, n := range msg.Page.Data {
			items[i] = item{notification: n}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.MarkRead):
			if n, ok := m.selected(); ok && !n.IsRead {
				id := n.ID
				return m, func() tea.Msg {
					return MarkReadRequestMsg{NotificationID: id}
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.MarkAllRead):
			return m, func() tea.Msg { return MarkAllReadRequestMsg{} }

		case key.Matches(msg, m.keys.DeleteTask):
			if n, ok := m.selected(); ok {
				id := n.ID
				return m, func() tea.Msg {
					return DeleteRequestMsg{NotificationID: id}
				}
			}
			return m, nil

		case key.Matches(msg, m.keys.FilterUnread):
			m.filters.IsRead = toggleUnreadFilter(m.filters.IsRead)
			m.filters.Page = 1
			filters := m.filters
			return m, func() tea.Msg { return FilterChangedMsg{Filters: filters} }

		case key.Matches(msg, m.keys.NextPage):
			if m.filters.Page < m.page.TotalPages {
				m.filters.Page++
				filters := m.filters
				return m, func() tea.Msg { return FilterChangedMsg{Filters: filters} }
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevPage):
			if m.filters.Page > 1 {
				m.filters.Page--
				filters := m.filters
				return m, func() tea.Msg { return FilterChangedMsg{Filters: filters} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the notification list with its pagination line.
func (m Model) View() string {
	filterLine := ""
	if m.filters.IsRead != nil && !*m.filters.IsRead {
		filterLine = theme.HelpStyle.Render("showing unread only")
	}

	pageLine := theme.HelpStyle.Render(fmt.Sprintf(
		"page %d/%d (%d notifications)",
		m.page.Page, max(m.page.TotalPages, 1), m.page.Total,
	))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.list.View(),
		filterLine,
		pageLine,
	)
}

// toggleUnreadFilter flips between "everything" and "unread only".
func toggleUnreadFilter(current *bool) *bool {
	if current == nil {
		v := false
		return &v
	}
	return nil
}
