// Package ui holds the interactive surfaces of the tool: list selection,
// credential and callback prompts, and styled rendering of results.
package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted indicates the user left a selection prompt without choosing.
var ErrAborted = errors.New("selection aborted")

const (
	listWidth  = 48
	listHeight = 16
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

// Item is one selectable entry.
type Item struct {
	Title string
	Desc  string
}

var _ list.Item = pickItem{}

// pickItem wraps [Item] to implement [list.Item].
type pickItem struct {
	item Item
}

func (p pickItem) FilterValue() string { return p.item.Title }
func (p pickItem) Title() string       { return p.item.Title }
func (p pickItem) Description() string { return p.item.Desc }

type pickModel struct {
	list   list.Model
	choice int
}

func (m pickModel) Init() tea.Cmd { return nil }

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.choice = m.list.Index()
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			m.choice = -1
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string {
	return docStyle.Render(m.list.View())
}

// Pick shows a selection list and returns the index of the chosen item.
// Quitting without choosing returns ErrAborted.
func Pick(title string, items []Item) (int, error) {
	entries := make([]list.Item, len(items))
	for i, item := range items {
		entries[i] = pickItem{item: item}
	}

	l := list.New(entries, list.NewDefaultDelegate(), listWidth, listHeight)
	l.Title = title
	l.SetShowStatusBar(false)

	final, err := tea.NewProgram(pickModel{list: l, choice: -1}).Run()
	if err != nil {
		return 0, fmt.Errorf("failed displaying selection: %w", err)
	}

	model, ok := final.(pickModel)
	if !ok || model.choice < 0 {
		return 0, ErrAborted
	}

	return model.choice, nil
}
