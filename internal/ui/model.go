// Package ui is the terminal front end of the board: a bubbletea program
// that renders the mirror and drives the drag controller from the keyboard.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BuzzLyutic/kanban-board/internal/board"
	"github.com/BuzzLyutic/kanban-board/internal/model"
)

type mode int

const (
	browsing mode = iota
	editing
)

// resultMsg приходит из сетевых команд
type resultMsg struct {
	status string
	err    error
}

// Model keeps a cursor over the board. Row -1 is the column header.
type Model struct {
	session *board.Session
	timeout time.Duration

	col, row int
	mode     mode
	input    []rune

	status string
	failed bool
}

func New(session *board.Session, timeout time.Duration) Model {
	return Model{session: session, timeout: timeout, row: -1, status: "loading..."}
}

func (m Model) Init() tea.Cmd {
	return m.run("board loaded", m.session.Load)
}

// run выполняет fn в горутине bubbletea с таймаутом запроса
func (m Model) run(ok string, fn func(ctx context.Context) error) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{status: ok}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		if msg.err != nil {
			m.status, m.failed = msg.err.Error(), true
		} else {
			m.status, m.failed = msg.status, false
		}
		m.clamp()
		return m, nil
	case tea.KeyMsg:
		if m.mode == editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	drag := m.session.Drag()

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "h", "left":
		m.move(-1, 0)
	case "l", "right":
		m.move(1, 0)
	case "j", "down":
		m.move(0, 1)
	case "k", "up":
		m.move(0, -1)
	case " ":
		return m.toggleDrag()
	case "esc":
		if drag.Phase() != board.Idle {
			drag.Cancel()
			m.status, m.failed = "move cancelled", false
			m.clamp()
		}
	case "c":
		return m, m.run("column added", func(ctx context.Context) error {
			_, err := m.session.CreateColumn(ctx)
			return err
		})
	case "n":
		col, ok := m.column()
		if !ok {
			break
		}
		return m, m.run("task added", func(ctx context.Context) error {
			_, err := m.session.CreateTask(ctx, col.ID)
			return err
		})
	case "x":
		return m, m.remove()
	case "p":
		return m, m.cycle(func(t *model.Task) { t.Priority = model.Next(model.Priorities, t.Priority) })
	case "f":
		return m, m.cycle(func(t *model.Task) { t.Difficulty = model.Next(model.Difficulties, t.Difficulty) })
	case "e":
		if drag.Phase() != board.Idle {
			break
		}
		if task, ok := m.task(); ok {
			m.mode, m.input = editing, []rune(task.Content)
		} else if col, ok := m.column(); ok {
			m.mode, m.input = editing, []rune(col.Title)
		}
	case "r":
		return m, m.run("board reloaded", m.session.Load)
	}
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode, m.input = browsing, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(string(m.input))
		m.mode, m.input = browsing, nil
		if text == "" {
			break
		}
		if task, ok := m.task(); ok {
			task.Content = text
			return m, m.run("task saved", func(ctx context.Context) error {
				_, err := m.session.UpdateTask(ctx, task)
				return err
			})
		}
		if col, ok := m.column(); ok {
			return m, m.run("column renamed", func(ctx context.Context) error {
				_, err := m.session.UpdateColumnTitle(ctx, col.ID, text)
				return err
			})
		}
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

// move двигает курсор, а во время перетаскивания задачи - саму задачу
func (m *Model) move(dx, dy int) {
	s := m.session.State()
	drag := m.session.Drag()

	switch drag.Phase() {
	case board.DraggingTask:
		active, _ := drag.Active()
		if over, ok := m.target(s, dx, dy); ok {
			drag.Over(&over)
			m.follow(active.ID)
		}
		return
	case board.DraggingColumn:
		dy = 0
	}

	m.col += dx
	m.row += dy
	m.clamp()
}

// target выбирает, над чем окажется перетаскиваемая задача после шага курсора
func (m *Model) target(s board.State, dx, dy int) (board.Item, bool) {
	nc := m.col + dx
	if nc < 0 || nc >= len(s.Columns) {
		return board.Item{}, false
	}
	tasks := s.TasksIn(s.Columns[nc].ID)

	if dx != 0 {
		if len(tasks) == 0 {
			return board.ColumnItem(s.Columns[nc].ID), true
		}
		return board.TaskItem(tasks[min(max(m.row, 0), len(tasks)-1)].ID), true
	}

	nr := m.row + dy
	if nr < 0 || nr >= len(tasks) {
		return board.Item{}, false
	}
	return board.TaskItem(tasks[nr].ID), true
}

func (m Model) toggleDrag() (tea.Model, tea.Cmd) {
	drag := m.session.Drag()

	switch drag.Phase() {
	case board.Idle:
		if task, ok := m.task(); ok {
			drag.Start(board.TaskItem(task.ID))
			m.status, m.failed = "moving "+task.Content, false
		} else if col, ok := m.column(); ok && m.row < 0 {
			drag.Start(board.ColumnItem(col.ID))
			m.status, m.failed = "moving "+col.Title, false
		}
		return m, nil
	case board.DraggingColumn:
		active, _ := drag.Active()
		col, ok := m.column()
		if !ok {
			drag.Cancel()
			return m, nil
		}
		over := board.ColumnItem(col.ID)
		plan := drag.End(&over)
		m.followColumn(active.ID)
		return m, m.commit(plan)
	default:
		active, _ := drag.Active()
		plan := drag.End(&active)
		m.follow(active.ID)
		return m, m.commit(plan)
	}
}

func (m *Model) commit(plan *board.Plan) tea.Cmd {
	if plan == nil {
		m.status, m.failed = "nothing moved", false
		return nil
	}
	return m.run("order saved", func(ctx context.Context) error {
		return m.session.Commit(ctx, plan)
	})
}

func (m Model) remove() tea.Cmd {
	if m.session.Drag().Phase() != board.Idle {
		return nil
	}
	if task, ok := m.task(); ok {
		return m.run("task deleted", func(ctx context.Context) error {
			return m.session.DeleteTask(ctx, task.ID)
		})
	}
	if col, ok := m.column(); ok {
		return m.run("column deleted", func(ctx context.Context) error {
			return m.session.DeleteColumn(ctx, col.ID)
		})
	}
	return nil
}

func (m Model) cycle(change func(*model.Task)) tea.Cmd {
	task, ok := m.task()
	if !ok || m.session.Drag().Phase() != board.Idle {
		return nil
	}
	change(&task)
	return m.run("task saved", func(ctx context.Context) error {
		_, err := m.session.UpdateTask(ctx, task)
		return err
	})
}

func (m Model) column() (model.Column, bool) {
	s := m.session.State()
	if m.col < 0 || m.col >= len(s.Columns) {
		return model.Column{}, false
	}
	return s.Columns[m.col], true
}

func (m Model) task() (model.Task, bool) {
	col, ok := m.column()
	if !ok || m.row < 0 {
		return model.Task{}, false
	}
	tasks := m.session.State().TasksIn(col.ID)
	if m.row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.row], true
}

func (m *Model) follow(taskID int64) {
	s := m.session.State()
	for ci, col := range s.Columns {
		for ri, t := range s.TasksIn(col.ID) {
			if t.ID == taskID {
				m.col, m.row = ci, ri
				return
			}
		}
	}
	m.clamp()
}

func (m *Model) followColumn(columnID int64) {
	if i := m.session.State().ColumnIndex(columnID); i >= 0 {
		m.col = i
	}
	m.row = -1
}

func (m *Model) clamp() {
	s := m.session.State()
	m.col = min(max(m.col, 0), max(len(s.Columns)-1, 0))
	n := 0
	if m.col < len(s.Columns) {
		n = len(s.TasksIn(s.Columns[m.col].ID))
	}
	m.row = min(max(m.row, -1), n-1)
}

func (m Model) View() string {
	s := m.session.State()
	drag := m.session.Drag()
	active, dragging := drag.Active()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Kanban board"))
	b.WriteString("\n\n")

	if len(s.Columns) == 0 {
		b.WriteString(mutedStyle.Render("No columns yet. Press c to add one."))
		b.WriteString("\n")
	}

	views := make([]string, 0, len(s.Columns))
	for ci, col := range s.Columns {
		views = append(views, m.renderColumn(s, ci, col, active, dragging))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, views...))
	b.WriteString("\n")

	if m.mode == editing {
		b.WriteString("edit: " + string(m.input) + "▌\n")
	}
	if m.failed {
		b.WriteString(errorStyle.Render("error: " + m.status))
	} else {
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("←↓↑→/hjkl move • space pick up/drop • esc cancel • c column • n task • e edit • p priority • f difficulty • x delete • r reload • q quit"))
	return b.String()
}

func (m Model) renderColumn(s board.State, ci int, col model.Column, active board.Item, dragging bool) string {
	focused := ci == m.col

	title := titleStyle.Render(col.Title)
	if focused && m.row < 0 {
		title = focusedTitleStyle.Render(col.Title)
	}
	tasks := s.TasksIn(col.ID)
	parts := []string{fmt.Sprintf("%s %s", title, mutedStyle.Render(fmt.Sprintf("(%d)", len(tasks))))}

	for ri, t := range tasks {
		style := cardStyle
		switch {
		case dragging && active == board.TaskItem(t.ID):
			style = draggedCardStyle
		case focused && ri == m.row:
			style = focusedCardStyle
		}
		parts = append(parts, style.Render(renderTask(t)))
	}
	if len(tasks) == 0 {
		parts = append(parts, mutedStyle.Render("empty"))
	}

	style := columnStyle
	switch {
	case dragging && active == board.ColumnItem(col.ID):
		style = draggedColumnStyle
	case focused:
		style = focusedColumnStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderTask(t model.Task) string {
	priority := lipgloss.NewStyle().Foreground(priorityColors[t.Priority]).Render(t.Priority)
	return fmt.Sprintf("%s\n%s\n%s · %s", t.Content, mutedStyle.Render(t.Description), priority, t.Difficulty)
}
