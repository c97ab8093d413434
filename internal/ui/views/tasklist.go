package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/models"
	"github.com/jtoledano/organizer/internal/store"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
)

var (
	priorityChoices = []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow}
	statusChoices   = []models.Status{models.StatusPending, models.StatusInProgress, models.StatusCompleted}
	quadrantChoices = []models.Quadrant{
		models.QuadrantDo, models.QuadrantSchedule,
		models.QuadrantDelegate, models.QuadrantEliminate,
	}
)

// quadrantLabels are the English display names for the wire keys
var quadrantLabels = map[models.Quadrant]string{
	models.QuadrantDo:        "Do: urgent & important",
	models.QuadrantSchedule:  "Schedule: important",
	models.QuadrantDelegate:  "Delegate: urgent",
	models.QuadrantEliminate: "Eliminate: neither",
}

var statusLabels = map[models.Status]string{
	models.StatusPending:    "Pending",
	models.StatusInProgress: "In progress",
	models.StatusCompleted:  "Completed",
}

// TaskListView is the default screen: every task in server order, with
// toggle/create/edit/delete. The create/edit form is an overlay state of
// this view, as are the delete confirmation and the inline error.
type TaskListView struct {
	cache  *store.Cache
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	tasks   []models.Task
	tags    []models.Tag
	cursor  int
	scrollY int

	// Editing state
	editing    bool
	editingNew bool
	editID     int64
	editTitle  textinput.Model
	editDesc   textarea.Model
	editDue    textinput.Model
	priorityIx int
	statusIx   int
	quadrantIx int
	editTags   []int64
	tagCursor  int
	focusIdx   int // 0=title 1=desc 2=due 3=priority 4=status 5=quadrant 6=tags 7=save
	formErr    string

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string
}

// NewTaskListView creates the list view over the shared cache
func NewTaskListView(cache *store.Cache) *TaskListView {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 150

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 2000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD [HH:MM]"
	due.CharLimit = 16

	return &TaskListView{
		cache:     cache,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		editTitle: title,
		editDesc:  desc,
		editDue:   due,
	}
}

func (v *TaskListView) Init() tea.Cmd {
	return v.refresh
}

// Capturing reports whether an overlay (form or confirm prompt) owns the
// keyboard, so global shortcuts should stay out of the way.
func (v *TaskListView) Capturing() bool {
	return v.editing || v.confirmingDelete
}

// refresh pulls tasks and tags from the server into the cache
func (v *TaskListView) refresh() tea.Msg {
	ctx := context.Background()
	v.cache.FetchTasks(ctx)
	v.cache.FetchTags(ctx)
	return DataChanged{}
}

type taskSavedMsg struct {
	err error
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case DataChanged:
		v.tasks = v.cache.Tasks()
		v.tags = v.cache.Tags()
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case taskSavedMsg:
		if msg.err != nil {
			v.formErr = msg.err.Error()
			return v, nil
		}
		v.editing = false
		return v, func() tea.Msg { return DataChanged{} }

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle):
		if len(v.tasks) == 0 {
			return v, nil
		}
		task := v.tasks[v.cursor]
		return v, func() tea.Msg {
			_, _ = v.cache.ToggleComplete(context.Background(), task.ID, !task.Completed)
			return DataChanged{}
		}

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if len(v.tasks) > 0 {
			v.startEditTask(v.tasks[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if len(v.tasks) > 0 {
			v.confirmingDelete = true
			v.deleteTargetID = v.tasks[v.cursor].ID
			v.deleteTargetName = v.tasks[v.cursor].Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.refresh
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTargetID
		v.confirmingDelete = false
		return v, func() tea.Msg {
			_ = v.cache.DeleteTask(context.Background(), id)
			return DataChanged{}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 8
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 7) % 8
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focusIdx {
		case 0, 2:
			// Title and due date advance on enter
			v.focusIdx++
			v.updateEditFocus()
			return v, nil
		case 6:
			v.toggleEditTag()
			return v, nil
		case 7:
			return v, v.saveTask()
		}
		// Textarea keeps enter for newlines

	case key.Matches(msg, v.keys.Left):
		switch v.focusIdx {
		case 3:
			v.priorityIx = (v.priorityIx + len(priorityChoices) - 1) % len(priorityChoices)
			return v, nil
		case 4:
			v.statusIx = (v.statusIx + len(statusChoices) - 1) % len(statusChoices)
			return v, nil
		case 5:
			v.quadrantIx = (v.quadrantIx + len(quadrantChoices) - 1) % len(quadrantChoices)
			return v, nil
		}

	case key.Matches(msg, v.keys.Right):
		switch v.focusIdx {
		case 3:
			v.priorityIx = (v.priorityIx + 1) % len(priorityChoices)
			return v, nil
		case 4:
			v.statusIx = (v.statusIx + 1) % len(statusChoices)
			return v, nil
		case 5:
			v.quadrantIx = (v.quadrantIx + 1) % len(quadrantChoices)
			return v, nil
		}

	case msg.String() == " ":
		if v.focusIdx == 6 {
			v.toggleEditTag()
			return v, nil
		}

	case key.Matches(msg, v.keys.Up):
		if v.focusIdx == 6 && v.tagCursor > 0 {
			v.tagCursor--
			return v, nil
		}

	case key.Matches(msg, v.keys.Down):
		if v.focusIdx == 6 && v.tagCursor < len(v.tags)-1 {
			v.tagCursor++
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case 2:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) toggleEditTag() {
	if v.tagCursor >= len(v.tags) {
		return
	}
	tagID := v.tags[v.tagCursor].ID
	for i, id := range v.editTags {
		if id == tagID {
			v.editTags = append(v.editTags[:i], v.editTags[i+1:]...)
			return
		}
	}
	v.editTags = append(v.editTags, tagID)
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.focusIdx = 0
	v.formErr = ""
	v.tagCursor = 0
	v.editTags = nil
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.priorityIx = 1 // medium
	v.statusIx = 0
	v.quadrantIx = 3 // neither, the server default
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editID = task.ID
	v.focusIdx = 0
	v.formErr = ""
	v.tagCursor = 0

	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	if task.DueDate != nil {
		v.editDue.SetValue(task.DueDate.Format("2006-01-02 15:04"))
	} else {
		v.editDue.Reset()
	}

	v.priorityIx = indexOf(priorityChoices, task.Priority, 1)
	v.statusIx = indexOf(statusChoices, task.Status, 0)
	v.quadrantIx = indexOf(quadrantChoices, task.Quadrant, 3)

	v.editTags = make([]int64, len(task.Tags))
	for i, tag := range task.Tags {
		v.editTags[i] = tag.ID
	}
	v.updateEditFocus()
}

func indexOf[T comparable](choices []T, val T, fallback int) int {
	for i, c := range choices {
		if c == val {
			return i
		}
	}
	return fallback
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()
	switch v.focusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	case 2:
		v.editDue.Focus()
	}
}

// parseDue accepts "YYYY-MM-DD HH:MM" or a bare date
func parseDue(s string) (*models.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			wrapped := models.NewTime(t)
			return &wrapped, nil
		}
	}
	return nil, fmt.Errorf("bad date %q, want YYYY-MM-DD [HH:MM]", s)
}

func (v *TaskListView) saveTask() tea.Cmd {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.formErr = "title is required"
		return nil
	}

	due, err := parseDue(v.editDue.Value())
	if err != nil {
		v.formErr = err.Error()
		return nil
	}

	desc := strings.TrimSpace(v.editDesc.Value())
	priority := priorityChoices[v.priorityIx]
	status := statusChoices[v.statusIx]
	quadrant := quadrantChoices[v.quadrantIx]
	completed := status == models.StatusCompleted
	tagIDs := append([]int64(nil), v.editTags...)

	if v.editingNew {
		draft := models.TaskDraft{
			Title:       title,
			Description: desc,
			DueDate:     due,
			Status:      status,
			Priority:    priority,
			Quadrant:    quadrant,
			Completed:   completed,
			TagIDs:      tagIDs,
		}
		return func() tea.Msg {
			_, err := v.cache.CreateTask(context.Background(), draft)
			return taskSavedMsg{err: err}
		}
	}

	id := v.editID
	patch := models.TaskPatch{
		Title:       &title,
		Description: &desc,
		DueDate:     due,
		Status:      &status,
		Priority:    &priority,
		Quadrant:    &quadrant,
		Completed:   &completed,
		TagIDs:      tagIDs,
		// An emptied date field means remove the date, not keep it
		ClearDueDate: due == nil,
	}
	return func() tea.Msg {
		_, err := v.cache.UpdateTask(context.Background(), id, patch)
		return taskSavedMsg{err: err}
	}
}

func (v *TaskListView) ensureVisible() {
	availableHeight := max(v.height-8, 2)
	visibleItems := max(availableHeight, 1)

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *TaskListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderEditForm()
	}
	return v.renderList()
}

func (v *TaskListView) renderList() string {
	s := v.styles
	now := time.Now()

	if len(v.tasks) == 0 {
		empty := lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render("No Tasks"),
			"",
			s.TitleMuted.Render("Press 'n' to create your first task"),
		)
		return lipgloss.Place(styles.ContentWidth(v.width), max(v.height-4, 3),
			lipgloss.Center, lipgloss.Center, empty)
	}

	availableHeight := max(v.height-8, 2)
	endIdx := min(v.scrollY+availableHeight, len(v.tasks))

	var rows []string
	for i := v.scrollY; i < endIdx; i++ {
		rows = append(rows, v.renderRow(v.tasks[i], i == v.cursor, now))
	}

	list := lipgloss.JoinVertical(lipgloss.Left, rows...)
	help := s.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s edit • %s del • %s refresh",
			s.HelpKey.Render("␣"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("r"),
		),
	)
	return list + "\n" + help
}

func (v *TaskListView) renderRow(t models.Task, selected bool, now time.Time) string {
	s := v.styles

	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	titleStyle := s.ListItem
	if t.Completed {
		titleStyle = s.TaskDone
	}
	if selected {
		titleStyle = s.ListSelected
	}

	var meta []string
	if due := dueLabel(t, now); due != "" {
		dueStyle := s.TaskDue
		if overdue(t, now) {
			dueStyle = s.TaskOverdue
		}
		meta = append(meta, dueStyle.Render(due))
	}
	for _, tag := range t.Tags {
		meta = append(meta, s.Tag.Render("#"+tag.Name))
	}

	mark := priorityMark(t.Priority)
	markStyle := s.PriorityLow
	switch t.Priority {
	case models.PriorityHigh:
		markStyle = s.PriorityHigh
	case models.PriorityMedium:
		markStyle = s.PriorityMed
	}

	row := fmt.Sprintf("%s %s %s", check, markStyle.Render(mark), titleStyle.Render(t.Title))
	if len(meta) > 0 {
		row += "  " + strings.Join(meta, " ")
	}
	return row
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := "New Task"
	if !v.editingNew {
		title = "Edit Task"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	chooserStyle := func(idx int) lipgloss.Style {
		if v.focusIdx == idx {
			return s.ListSelected
		}
		return s.ListItem
	}

	inputWidth := clamp(contentWidth-10, 20, 50)

	var tagRows []string
	if len(v.tags) == 0 {
		tagRows = append(tagRows, s.TitleMuted.Render("  (no tags yet, create them in settings)"))
	}
	for i, tag := range v.tags {
		mark := "[ ]"
		for _, id := range v.editTags {
			if id == tag.ID {
				mark = "[x]"
				break
			}
		}
		row := fmt.Sprintf("%s %s", mark, tag.Name)
		if v.focusIdx == 6 && i == v.tagCursor {
			row = s.ListSelected.Render(row)
		} else {
			row = s.ListItem.Render(row)
		}
		tagRows = append(tagRows, row)
	}

	btnStyle := s.Button
	if v.focusIdx == 7 {
		btnStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(title),
		"",
		"Title:",
		fieldStyle(0).Width(inputWidth).Render(v.editTitle.View()),
		"Description:",
		fieldStyle(1).Render(v.editDesc.View()),
		"Due date:",
		fieldStyle(2).Width(inputWidth).Render(v.editDue.View()),
		"",
		"Priority:  " + chooserStyle(3).Render("< "+string(priorityChoices[v.priorityIx])+" >"),
		"Status:    " + chooserStyle(4).Render("< "+statusLabels[statusChoices[v.statusIx]]+" >"),
		"Quadrant:  " + chooserStyle(5).Render("< "+quadrantLabels[quadrantChoices[v.quadrantIx]]+" >"),
		"",
		"Tags:",
	}
	rows = append(rows, tagRows...)
	rows = append(rows, "", btnStyle.Render(" Save "))
	if v.formErr != "" {
		rows = append(rows, "", s.ErrorBar.Render(v.formErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ←/→: choose • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center, form)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("%q will be permanently deleted.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center, content)
	return styles.CenterView(centered, v.width, v.height)
}
