package views

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/models"
	"github.com/jtoledano/organizer/internal/projection"
	"github.com/jtoledano/organizer/internal/store"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
)

var boardColumns = []models.Status{
	models.StatusPending,
	models.StatusInProgress,
	models.StatusCompleted,
}

// BoardView is the Kanban screen: three status columns, a focused column and
// cursor, and [ / ] to move the selected task between statuses.
type BoardView struct {
	cache     *store.Cache
	projector *projection.Projector
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	board  projection.Board
	colIdx int
	cursor int
}

// NewBoardView creates the Kanban view
func NewBoardView(cache *store.Cache, projector *projection.Projector) *BoardView {
	return &BoardView{
		cache:     cache,
		projector: projector,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
	}
}

func (v *BoardView) Init() tea.Cmd {
	v.board = v.projector.Board()
	return nil
}

func (v *BoardView) column(idx int) []models.Task {
	return v.board.Column(boardColumns[idx])
}

func (v *BoardView) clampCursor() {
	col := v.column(v.colIdx)
	if v.cursor >= len(col) {
		v.cursor = max(0, len(col)-1)
	}
}

// moveTask shifts the selected task one column in the given direction by
// issuing a status patch (which also keeps the completed flag in lockstep).
func (v *BoardView) moveTask(dir int) tea.Cmd {
	col := v.column(v.colIdx)
	if len(col) == 0 {
		return nil
	}
	target := v.colIdx + dir
	if target < 0 || target >= len(boardColumns) {
		return nil
	}

	task := col[v.cursor]
	patch := models.StatusPatch(boardColumns[target])
	return func() tea.Msg {
		_, _ = v.cache.UpdateTask(context.Background(), task.ID, patch)
		return DataChanged{}
	}
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case DataChanged:
		v.board = v.projector.Board()
		v.clampCursor()
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.Left):
			if v.colIdx > 0 {
				v.colIdx--
				v.clampCursor()
			}
			return v, nil

		case key.Matches(msg, v.keys.Right):
			if v.colIdx < len(boardColumns)-1 {
				v.colIdx++
				v.clampCursor()
			}
			return v, nil

		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil

		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.column(v.colIdx))-1 {
				v.cursor++
			}
			return v, nil

		case msg.String() == "[":
			return v, v.moveTask(-1)

		case msg.String() == "]":
			return v, v.moveTask(1)
		}
	}

	return v, nil
}

func (v *BoardView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	colWidth := max(contentWidth/3-2, 20)
	now := time.Now()

	titles := map[models.Status]string{
		models.StatusPending:    "Pending",
		models.StatusInProgress: "In Progress",
		models.StatusCompleted:  "Completed",
	}

	var cols []string
	for i, status := range boardColumns {
		tasks := v.column(i)

		rows := []string{
			s.ColumnTitle.Render(fmt.Sprintf("%s (%d)", titles[status], len(tasks))),
			"",
		}
		if len(tasks) == 0 {
			rows = append(rows, s.TitleMuted.Render("empty"))
		}
		for j, t := range tasks {
			line := t.Title
			if due := dueLabel(t, now); due != "" {
				line += " " + s.TaskDue.Render("("+due+")")
			}
			if i == v.colIdx && j == v.cursor {
				line = s.ListSelected.Width(colWidth - 2).Render(line)
			} else {
				line = s.ListItem.Width(colWidth - 2).Render(line)
			}
			rows = append(rows, line)
		}

		colStyle := s.Column
		if i == v.colIdx {
			colStyle = s.ColumnFocus
		}
		cols = append(cols, colStyle.Width(colWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, rows...),
		))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	help := s.Help.Render(
		fmt.Sprintf("%s column • %s task • %s move task",
			s.HelpKey.Render("←/→"),
			s.HelpKey.Render("↑/↓"),
			s.HelpKey.Render("[/]"),
		),
	)
	return styles.CenterView(board+"\n"+help, v.width, v.height)
}
