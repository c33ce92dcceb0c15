package subscriptions

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskhub/internal/keys"
	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// LoadedMsg is sent when the subscription list has been fetched.
type LoadedMsg struct {
	Subscriptions []model.Subscription
}

// OpenTaskMsg asks the root app to open the followed task's detail view.
type OpenTaskMsg struct {
	TaskID int
}

// UnsubscribeRequestMsg asks the root app to drop a subscription.
type UnsubscribeRequestMsg struct {
	TaskID int
}

// item wraps a subscription for the bubbles list.
type item struct {
	subscription model.Subscription
}

func (i item) FilterValue() string { return i.subscription.Task.Title }

// delegate renders subscription rows.
type delegate struct{}

func (d delegate) Height() int                             { return 1 }
func (d delegate) Spacing() int                            { return 0 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	si, ok := li.(item)
	if !ok {
		return
	}
	task := si.subscription.Task

	owner := task.Owner.FullName
	if owner == "" {
		owner = task.Owner.Email
	}

	status := theme.CompletionStyle(task.IsCompleted).Render("[ ]")
	if task.IsCompleted {
		status = theme.CompletionStyle(true).Render("[x]")
	}

	row := fmt.Sprintf("%s %s %s", status, task.Title,
		theme.HelpStyle.Render("by "+owner))

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(row))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(row))
}

// Model is the subscription list view.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
}

// New creates a new subscriptions view model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, delegate{}, width, height-1)
	l.Title = "Subscriptions"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{list: l, keys: k, width: width, height: height}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-1)
}

// selected returns the subscription under the cursor.
func (m Model) selected() (model.Subscription, bool) {
	li, ok := m.list.SelectedItem().(item)
	if !ok {
		return model.Subscription{}, false
	}
	return li.subscription, true
}

// Update handles messages for the subscriptions view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		items := make([]list.Item, len(msg.Subscriptions))
		for i, s := range msg.Subscriptions {
			items[i] = item{subscription: s}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			if s, ok := m.selected(); ok {
				taskID := s.TaskID
				return m, func() tea.Msg { return OpenTaskMsg{TaskID: taskID} }
			}
			return m, nil

		case key.Matches(msg, m.keys.Unsubscribe):
			if s, ok := m.selected(); ok {
				taskID := s.TaskID
				return m, func() tea.Msg {
					return UnsubscribeRequestMsg{TaskID: taskID}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the subscription list.
func (m Model) View() string {
	return m.list.View()
}
