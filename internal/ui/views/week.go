package views

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/projection"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
)

// WeekView is the read-only weekly planner: incomplete tasks due in the next
// seven days, grouped by day.
type WeekView struct {
	projector *projection.Projector
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int
	days   []projection.Day
}

// NewWeekView creates the weekly planner view
func NewWeekView(projector *projection.Projector) *WeekView {
	return &WeekView{
		projector: projector,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
	}
}

func (v *WeekView) Init() tea.Cmd {
	v.days = v.projector.Week(time.Now())
	return nil
}

func (v *WeekView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case DataChanged:
		v.days = v.projector.Week(time.Now())
		return v, nil

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Quit) {
			return v, tea.Quit
		}
	}

	return v, nil
}

func (v *WeekView) View() string {
	s := v.styles

	if len(v.days) == 0 {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render("Your week is clear"),
			"",
			s.TitleMuted.Render("Tasks with a due date in the next 7 days show up here"),
		)
		return lipgloss.Place(styles.ContentWidth(v.width), max(v.height-4, 3),
			lipgloss.Center, lipgloss.Center, empty)
	}

	var rows []string
	for _, day := range v.days {
		rows = append(rows, s.GroupHeader.Render(fmt.Sprintf("%s (%d)", day.Label, len(day.Tasks))))
		for _, t := range day.Tasks {
			line := "  " + t.Title
			if t.DueDate != nil {
				line += " " + s.TaskDue.Render(t.DueDate.Format("15:04"))
			}
			for _, tag := range t.Tags {
				line += " " + s.Tag.Render("#"+tag.Name)
			}
			rows = append(rows, s.ListItem.Render(line))
		}
		rows = append(rows, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}
