package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/models"
	"github.com/jtoledano/organizer/internal/session"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
)

// LoginView is the email/password form shown while unauthenticated. Tab
// between fields; enter on the button submits; ctrl+r flips between sign-in
// and registration.
type LoginView struct {
	session *session.Store
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	registering bool
	submitting  bool
	errMsg      string

	email    textinput.Model
	password textinput.Model
	focusIdx int // 0=email, 1=password, 2=submit
}

// NewLoginView creates the login form
func NewLoginView(sess *session.Store) *LoginView {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	email.Focus()

	return &LoginView{
		session:  sess,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

type authResultMsg struct {
	user *models.User
	err  error
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		v.errMsg = "email and password are required"
		return nil
	}

	v.submitting = true
	v.errMsg = ""
	registering := v.registering

	return func() tea.Msg {
		var (
			user *models.User
			err  error
		)
		if registering {
			user, err = v.session.Register(context.Background(), email, password)
		} else {
			user, err = v.session.Login(context.Background(), email, password)
		}
		return authResultMsg{user: user, err: err}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case authResultMsg:
		v.submitting = false
		if msg.err != nil {
			v.errMsg = v.session.LastError()
			return v, nil
		}
		v.password.Reset()
		return v, func() tea.Msg {
			return LoggedIn{User: *msg.user}
		}

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "ctrl+r":
			v.registering = !v.registering
			v.errMsg = ""
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, nil

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < 2 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := "Sign In"
	button := " Sign In "
	switchHint := "Ctrl+R: create an account"
	if v.registering {
		title = "Create Account"
		button = " Register "
		switchHint = "Ctrl+R: back to sign in"
	}

	emailStyle := s.Input
	passStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 24, 48)

	rows := []string{
		s.Title.Render("Organizer"),
		s.TitleMuted.Render(title),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(button),
	}

	if v.submitting {
		rows = append(rows, "", s.TitleMuted.Render("Signing in..."))
	}
	if v.errMsg != "" {
		rows = append(rows, "", s.ErrorBar.Render(v.errMsg))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • ↵: submit • "+switchHint))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
