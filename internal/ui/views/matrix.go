package views

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/models"
	"github.com/jtoledano/organizer/internal/projection"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
)

// MatrixView is the Eisenhower screen: incomplete tasks in a 2x2 grid of
// urgency/importance quadrants.
type MatrixView struct {
	projector *projection.Projector
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int
	matrix projection.Matrix
}

// NewMatrixView creates the Eisenhower view
func NewMatrixView(projector *projection.Projector) *MatrixView {
	return &MatrixView{
		projector: projector,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
	}
}

func (v *MatrixView) Init() tea.Cmd {
	v.matrix = v.projector.Matrix()
	return nil
}

func (v *MatrixView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case DataChanged:
		v.matrix = v.projector.Matrix()
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Quit) {
			return v, tea.Quit
		}
	}

	return v, nil
}

func (v *MatrixView) quadrant(q models.Quadrant, title string, tasks []models.Task, width int) string {
	s := v.styles
	now := time.Now()

	header := lipgloss.NewStyle().
		Foreground(styles.QuadrantColor(q)).
		Bold(true).
		Render(fmt.Sprintf("%s (%d)", title, len(tasks)))

	rows := []string{header, ""}
	if len(tasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("empty"))
	}
	for _, t := range tasks {
		line := t.Title
		if due := dueLabel(t, now); due != "" {
			dueStyle := s.TaskDue
			if overdue(t, now) {
				dueStyle = s.TaskOverdue
			}
			line += " " + dueStyle.Render("("+due+")")
		}
		rows = append(rows, s.ListItem.Width(width-4).Render(line))
	}

	return s.Column.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (v *MatrixView) View() string {
	contentWidth := styles.ContentWidth(v.width)
	cellWidth := max(contentWidth/2-2, 24)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		v.quadrant(models.QuadrantDo, "Do: urgent & important", v.matrix.Do, cellWidth),
		v.quadrant(models.QuadrantSchedule, "Schedule: important", v.matrix.Schedule, cellWidth),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		v.quadrant(models.QuadrantDelegate, "Delegate: urgent", v.matrix.Delegate, cellWidth),
		v.quadrant(models.QuadrantEliminate, "Eliminate: neither", v.matrix.Eliminate, cellWidth),
	)

	grid := lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	return styles.CenterView(grid, v.width, v.height)
}
