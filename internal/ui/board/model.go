// Package board is the interactive terminal view of one project's todos.
// Pending todos can be reordered by hand while the view keeps refreshing
// from the store on a timer.
package board

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/smarttodo/internal/keys"
	"github.com/nhle/smarttodo/internal/model"
	"github.com/nhle/smarttodo/internal/reconcile"
	"github.com/nhle/smarttodo/internal/theme"
)

const defaultInterval = 5 * time.Second

// Backend is the subset of the service the board drives.
type Backend interface {
	ProjectBoard(ctx context.Context, projectID string) (reconcile.Snapshot, error)
	MoveTodo(ctx context.Context, projectID string, from, to int) (reconcile.Snapshot, error)
	ToggleTodo(ctx context.Context, id string, completed bool) (*model.Todo, error)
	CyclePriority(ctx context.Context, id string) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

// LoadedMsg carries a freshly merged board snapshot.
type LoadedMsg struct {
	Snapshot reconcile.Snapshot
	Err      error
	// Cursor, when non-negative, is where the selection should land.
	Cursor int
}

// TickMsg fires the periodic refresh.
type TickMsg time.Time

// Model is the board view component.
type Model struct {
	project  model.Project
	backend  Backend
	keys     *keys.KeyMap
	list     list.Model
	help     help.Model
	interval time.Duration
	pending  int
	err      error
	width    int
	height   int
}

// New creates a board for project. A non-positive interval means 5s.
func New(project model.Project, b Backend, k *keys.KeyMap, interval time.Duration) Model {
	if interval <= 0 {
		interval = defaultInterval
	}
	l := list.New([]list.Item{}, ItemDelegate{}, 80, 20)
	l.Title = project.Name
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		project:  project,
		backend:  b,
		keys:     k,
		list:     l,
		help:     help.New(),
		interval: interval,
		width:    80,
		height:   22,
	}
}

// Init loads the board and starts the refresh timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(-1), m.tick())
}

// Update handles messages for the board.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		cursor := m.list.Index()
		if msg.Cursor >= 0 {
			cursor = msg.Cursor
		}
		m.pending = len(msg.Snapshot.Pending())
		cmd := m.list.SetItems(items(msg.Snapshot.Pending(), msg.Snapshot.Completed()))
		if n := len(m.list.Items()); n > 0 {
			m.list.Select(min(cursor, n-1))
		}
		return m, cmd

	case TickMsg:
		return m, tea.Batch(m.load(-1), m.tick())

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.load(-1)

	case key.Matches(msg, m.keys.MoveUp):
		return m, m.move(-1)

	case key.Matches(msg, m.keys.MoveDown):
		return m, m.move(1)

	case key.Matches(msg, m.keys.Toggle):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.write(func(ctx context.Context) error {
			_, err := m.backend.ToggleTodo(ctx, it.Todo.ID, !it.Todo.Completed)
			return err
		})

	case key.Matches(msg, m.keys.Priority):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.write(func(ctx context.Context) error {
			_, err := m.backend.CyclePriority(ctx, it.Todo.ID)
			return err
		})

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.write(func(ctx context.Context) error {
			return m.backend.DeleteTodo(ctx, it.Todo.ID)
		})
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (TodoItem, bool) {
	it, ok := m.list.SelectedItem().(TodoItem)
	return it, ok
}

// move shifts the selected pending todo by delta positions. Completed
// todos and moves past either end of the pending segment are ignored.
func (m Model) move(delta int) tea.Cmd {
	it, ok := m.selected()
	if !ok || it.Position < 0 {
		return nil
	}
	to := it.Position + delta
	if to < 0 || to >= m.pending {
		return nil
	}
	pid, from, b := m.project.ID, it.Position, m.backend
	return func() tea.Msg {
		snap, err := b.MoveTodo(context.Background(), pid, from, to)
		return LoadedMsg{Snapshot: snap, Err: err, Cursor: to}
	}
}

// write runs fn and then reloads the board.
func (m Model) write(fn func(ctx context.Context) error) tea.Cmd {
	pid, b := m.project.ID, m.backend
	return func() tea.Msg {
		ctx := context.Background()
		if err := fn(ctx); err != nil {
			return LoadedMsg{Err: err}
		}
		snap, err := b.ProjectBoard(ctx, pid)
		return LoadedMsg{Snapshot: snap, Err: err, Cursor: -1}
	}
}

func (m Model) load(cursor int) tea.Cmd {
	pid, b := m.project.ID, m.backend
	return func() tea.Msg {
		snap, err := b.ProjectBoard(context.Background(), pid)
		return LoadedMsg{Snapshot: snap, Err: err, Cursor: cursor}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// View renders the board.
func (m Model) View() string {
	var body string
	if len(m.list.Items()) == 0 {
		body = lipgloss.NewStyle().
			Width(m.width).
			Height(m.height-2).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No todos yet.\n\nAdd one with: smarttodo todo add " + m.project.ID + " TEXT")
	} else {
		body = m.list.View()
	}

	footer := m.help.View(m.keys)
	if m.err != nil {
		footer = theme.ErrorStyle.Render("Error: "+m.err.Error()) + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.help.Width = width
}
