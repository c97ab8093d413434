package views

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/api"
	"github.com/jtoledano/organizer/internal/models"
	"github.com/jtoledano/organizer/internal/prefs"
	"github.com/jtoledano/organizer/internal/session"
	"github.com/jtoledano/organizer/internal/store"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
)

type settingsSection int

const (
	sectionAccount settingsSection = iota
	sectionTags
	sectionPomodoro
)

// SettingsView groups account info and logout, the tag manager, and the
// Pomodoro timer preferences into one screen with tab-switchable sections.
type SettingsView struct {
	session *session.Store
	cache   *store.Cache
	prefs   *prefs.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	section settingsSection
	notice  string
	errMsg  string

	// tag manager state
	tags       []models.Tag
	tagCursor  int
	tagInput   textinput.Model
	addingTag  bool
	confirmDel bool

	// pomodoro state
	pomodoro  prefs.Pomodoro
	pomInputs [3]textinput.Model
	pomFocus  int
	pomEdit   bool
}

// NewSettingsView creates the settings screen
func NewSettingsView(sess *session.Store, cache *store.Cache, p *prefs.Store) *SettingsView {
	tagInput := textinput.New()
	tagInput.Placeholder = "tag name"
	tagInput.CharLimit = 50

	var pomInputs [3]textinput.Model
	for i := range pomInputs {
		pomInputs[i] = textinput.New()
		pomInputs[i].CharLimit = 3
		pomInputs[i].Width = 5
	}

	return &SettingsView{
		session:   sess,
		cache:     cache,
		prefs:     p,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		tagInput:  tagInput,
		pomInputs: pomInputs,
	}
}

// Capturing reports whether an overlay (input or confirm prompt) owns the
// keyboard, so global shortcuts should stay out of the way.
func (v *SettingsView) Capturing() bool {
	return v.addingTag || v.confirmDel || v.pomEdit
}

func (v *SettingsView) Init() tea.Cmd {
	v.tags = v.cache.Tags()
	v.pomodoro = v.prefs.Pomodoro()
	return nil
}

type tagMutationMsg struct{ err error }

func (v *SettingsView) createTag(name string) tea.Cmd {
	return func() tea.Msg {
		_, err := v.cache.CreateTag(context.Background(), name)
		return tagMutationMsg{err: err}
	}
}

func (v *SettingsView) deleteTag(id int64) tea.Cmd {
	return func() tea.Msg {
		err := v.cache.DeleteTag(context.Background(), id)
		return tagMutationMsg{err: err}
	}
}

func (v *SettingsView) logout() tea.Cmd {
	return func() tea.Msg {
		v.session.Logout(context.Background())
		return LoggedOut{}
	}
}

func (v *SettingsView) savePomodoro() {
	var mins [3]int
	for i, in := range v.pomInputs {
		n, err := strconv.Atoi(strings.TrimSpace(in.Value()))
		if err != nil || n < 1 || n > 180 {
			v.errMsg = "durations must be between 1 and 180 minutes"
			return
		}
		mins[i] = n
	}

	p := prefs.Pomodoro{Work: mins[0], ShortBreak: mins[1], LongBreak: mins[2]}
	if err := v.prefs.SetPomodoro(p); err != nil {
		v.errMsg = "could not save preferences"
		return
	}
	v.pomodoro = p
	v.pomEdit = false
	v.errMsg = ""
	v.notice = "Pomodoro preferences saved"
}

func (v *SettingsView) startPomodoroEdit() {
	v.pomInputs[0].SetValue(strconv.Itoa(v.pomodoro.Work))
	v.pomInputs[1].SetValue(strconv.Itoa(v.pomodoro.ShortBreak))
	v.pomInputs[2].SetValue(strconv.Itoa(v.pomodoro.LongBreak))
	v.pomFocus = 0
	v.pomFocusUpdate()
	v.pomEdit = true
	v.notice = ""
	v.errMsg = ""
}

func (v *SettingsView) pomFocusUpdate() {
	for i := range v.pomInputs {
		if i == v.pomFocus {
			v.pomInputs[i].Focus()
		} else {
			v.pomInputs[i].Blur()
		}
	}
}

func (v *SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case DataChanged:
		v.tags = v.cache.Tags()
		if v.tagCursor >= len(v.tags) {
			v.tagCursor = max(0, len(v.tags)-1)
		}
		return v, nil

	case tagMutationMsg:
		if msg.err != nil {
			var conflict *api.ConflictError
			if errors.As(msg.err, &conflict) {
				v.errMsg = conflict.Message
			} else {
				v.errMsg = v.cache.LastError()
			}
			return v, nil
		}
		v.errMsg = ""
		v.tagInput.Reset()
		v.addingTag = false
		return v, func() tea.Msg { return DataChanged{} }

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	return v, nil
}

func (v *SettingsView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.addingTag {
		switch msg.String() {
		case "enter":
			name := strings.TrimSpace(v.tagInput.Value())
			if name == "" {
				v.addingTag = false
				v.tagInput.Reset()
				return v, nil
			}
			return v, v.createTag(name)
		case "esc":
			v.addingTag = false
			v.tagInput.Reset()
			return v, nil
		}
		var cmd tea.Cmd
		v.tagInput, cmd = v.tagInput.Update(msg)
		return v, cmd
	}

	if v.confirmDel {
		switch msg.String() {
		case "y", "Y":
			v.confirmDel = false
			if v.tagCursor < len(v.tags) {
				return v, v.deleteTag(v.tags[v.tagCursor].ID)
			}
			return v, nil
		case "n", "N", "esc":
			v.confirmDel = false
			return v, nil
		}
		return v, nil
	}

	if v.pomEdit {
		switch msg.String() {
		case "tab", "down":
			v.pomFocus = (v.pomFocus + 1) % 3
			v.pomFocusUpdate()
			return v, nil
		case "shift+tab", "up":
			v.pomFocus = (v.pomFocus + 2) % 3
			v.pomFocusUpdate()
			return v, nil
		case "enter", "ctrl+s":
			v.savePomodoro()
			return v, nil
		case "esc":
			v.pomEdit = false
			v.errMsg = ""
			return v, nil
		}
		var cmd tea.Cmd
		v.pomInputs[v.pomFocus], cmd = v.pomInputs[v.pomFocus].Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Tab):
		v.section = (v.section + 1) % 3
		v.notice = ""
		v.errMsg = ""
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.section == sectionTags && v.tagCursor > 0 {
			v.tagCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.section == sectionTags && v.tagCursor < len(v.tags)-1 {
			v.tagCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		if v.section == sectionTags {
			v.addingTag = true
			v.notice = ""
			v.errMsg = ""
			v.tagInput.Focus()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if v.section == sectionTags && len(v.tags) > 0 {
			v.confirmDel = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.section == sectionPomodoro {
			v.startPomodoroEdit()
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.section == sectionAccount {
			return v, v.logout()
		}
		return v, nil
	}

	return v, nil
}

func (v *SettingsView) sectionTab(label string, section settingsSection) string {
	if v.section == section {
		return v.styles.TabActive.Render(label)
	}
	return v.styles.Tab.Render(label)
}

func (v *SettingsView) viewAccount() string {
	s := v.styles
	user := v.session.User()

	rows := []string{s.GroupHeader.Render("Account")}
	if user != nil {
		rows = append(rows,
			fmt.Sprintf("Email: %s", user.Email),
			fmt.Sprintf("Member since: %s", user.CreatedAt.Format("Jan 2, 2006")),
		)
	} else {
		rows = append(rows, s.TitleMuted.Render("not signed in"))
	}
	rows = append(rows, "", s.ButtonFocused.Render(" Log Out "), "",
		s.Help.Render(s.HelpKey.Render("↵")+" log out"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *SettingsView) viewTags() string {
	s := v.styles

	rows := []string{s.GroupHeader.Render(fmt.Sprintf("Tags (%d)", len(v.tags)))}
	if len(v.tags) == 0 && !v.addingTag {
		rows = append(rows, s.TitleMuted.Render("no tags yet"))
	}
	for i, tag := range v.tags {
		line := s.Tag.Render("#" + tag.Name)
		if i == v.tagCursor {
			line = s.ListSelected.Render(line)
		} else {
			line = s.ListItem.Render(line)
		}
		rows = append(rows, line)
	}

	if v.addingTag {
		rows = append(rows, "", "New tag:", s.InputFocused.Width(30).Render(v.tagInput.View()))
	} else if v.confirmDel && v.tagCursor < len(v.tags) {
		prompt := fmt.Sprintf("Delete #%s? It will be removed from every task. (y/n)", v.tags[v.tagCursor].Name)
		rows = append(rows, "", s.Popup.Render(prompt))
	} else {
		rows = append(rows, "",
			s.Help.Render(
				s.HelpKey.Render("n")+" new • "+
					s.HelpKey.Render("d")+" delete • "+
					s.HelpKey.Render("↑/↓")+" select",
			))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *SettingsView) viewPomodoro() string {
	s := v.styles

	rows := []string{s.GroupHeader.Render("Pomodoro")}
	if v.pomEdit {
		labels := []string{"Work (min):", "Short break (min):", "Long break (min):"}
		for i, label := range labels {
			style := s.Input
			if i == v.pomFocus {
				style = s.InputFocused
			}
			rows = append(rows, label, style.Render(v.pomInputs[i].View()))
		}
		rows = append(rows, "", s.Help.Render(
			s.HelpKey.Render("↵")+" save • "+s.HelpKey.Render("esc")+" cancel",
		))
	} else {
		rows = append(rows,
			fmt.Sprintf("Work: %d min", v.pomodoro.Work),
			fmt.Sprintf("Short break: %d min", v.pomodoro.ShortBreak),
			fmt.Sprintf("Long break: %d min", v.pomodoro.LongBreak),
			"",
			s.Help.Render(s.HelpKey.Render("e")+" edit"),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *SettingsView) View() string {
	tabs := lipgloss.JoinHorizontal(lipgloss.Top,
		v.sectionTab("Account", sectionAccount),
		v.sectionTab("Tags", sectionTags),
		v.sectionTab("Pomodoro", sectionPomodoro),
	)

	var body string
	switch v.section {
	case sectionAccount:
		body = v.viewAccount()
	case sectionTags:
		body = v.viewTags()
	case sectionPomodoro:
		body = v.viewPomodoro()
	}

	rows := []string{tabs, "", body}
	if v.notice != "" {
		rows = append(rows, "", v.styles.SuccessNote.Render(v.notice))
	}
	if v.errMsg != "" {
		rows = append(rows, "", v.styles.ErrorBar.Render(v.errMsg))
	}
	rows = append(rows, "", v.styles.Help.Render(v.styles.HelpKey.Render("tab")+" switch section"))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}
