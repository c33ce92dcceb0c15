package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskhub/internal/model"
	"github.com/nhle/taskhub/internal/theme"
)

// TaskItem wraps a task for display in the bubbles list component.
type TaskItem struct {
	Task model.Task

	// CurrentUserID marks ownership so the row can label foreign tasks.
	CurrentUserID int
}

// FilterValue implements list.Item. Filtering is done server-side, so
// the local filter value is unused.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// statusGlyph returns the completion marker for the row.
func (i TaskItem) statusGlyph() string {
	if i.Task.IsCompleted {
		return "[x]"
	}
	return "[ ]"
}

// ownerLabel names the owner for tasks the current user does not own.
func (i TaskItem) ownerLabel() string {
	if i.Task.IsOwnedBy(i.CurrentUserID) {
		return ""
	}
	name := i.Task.Owner.FullName
	if name == "" {
		name = i.Task.Owner.Email
	}
	return name
}

// TaskDelegate renders task rows.
type TaskDelegate struct{}

// Height implements list.ItemDelegate.
func (d TaskDelegate) Height() int { return 1 }

// Spacing implements list.ItemDelegate.
func (d TaskDelegate) Spacing() int { return 0 }

// Update implements list.ItemDelegate.
func (d TaskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

// Render implements list.ItemDelegate.
func (d TaskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	taskItem, ok := item.(TaskItem)
	if !ok {
		return
	}

	task := taskItem.Task

	glyph := theme.CompletionStyle(task.IsCompleted).Render(taskItem.statusGlyph())

	visibility := ""
	if task.IsPublic {
		visibility = theme.VisibilityStyle(true).Render("public")
	}

	owner := ""
	if label := taskItem.ownerLabel(); label != "" {
		owner = theme.HelpStyle.Render("by " + label)
	}

	title := task.Title
	if task.IsCompleted {
		title = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(theme.ColorGray).
			Render(title)
	}

	row := strings.TrimRight(
		fmt.Sprintf("%s %s %s %s", glyph, title, visibility, owner),
		" ",
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(row))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(row))
}
