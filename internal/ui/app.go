package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jtoledano/organizer/internal/prefs"
	"github.com/jtoledano/organizer/internal/projection"
	"github.com/jtoledano/organizer/internal/session"
	"github.com/jtoledano/organizer/internal/store"
	"github.com/jtoledano/organizer/internal/ui/keys"
	"github.com/jtoledano/organizer/internal/ui/styles"
	"github.com/jtoledano/organizer/internal/ui/views"
)

// Current application state
type appState int

const (
	stateLoading appState = iota
	stateLogin
	stateMain
)

// Currently active tab
type Tab int

const (
	TabList Tab = iota
	TabBoard
	TabWeek
	TabMatrix
	TabSettings
)

var tabNames = []string{"list", "board", "week", "matrix", "settings"}
var tabLabels = []string{"1 Tasks", "2 Board", "3 Week", "4 Matrix", "5 Settings"}

type bootstrapDoneMsg struct{}

// App is the root model. It restores the session on startup, shows the login
// form until authenticated, and then hosts the five tab views over a shared
// task/tag cache.
type App struct {
	session   *session.Store
	cache     *store.Cache
	prefs     *prefs.Store
	projector *projection.Projector
	styles    *styles.Styles
	keys      keys.KeyMap

	state appState
	tab   Tab

	login    *views.LoginView
	list     *views.TaskListView
	board    *views.BoardView
	week     *views.WeekView
	matrix   *views.MatrixView
	settings *views.SettingsView

	width  int
	height int
}

// NewApp creates the root application model
func NewApp(sess *session.Store, cache *store.Cache, p *prefs.Store) *App {
	projector := projection.NewProjector(cache)
	return &App{
		session:   sess,
		cache:     cache,
		prefs:     p,
		projector: projector,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
		state:     stateLoading,
		login:     views.NewLoginView(sess),
		list:      views.NewTaskListView(cache),
		board:     views.NewBoardView(cache, projector),
		week:      views.NewWeekView(projector),
		matrix:    views.NewMatrixView(projector),
		settings:  views.NewSettingsView(sess, cache, p),
	}
}

func (a *App) Init() tea.Cmd {
	return func() tea.Msg {
		a.session.Bootstrap(context.Background())
		return bootstrapDoneMsg{}
	}
}

// enterMain restores the last open tab and kicks off the initial data load
func (a *App) enterMain() tea.Cmd {
	a.state = stateMain
	a.tab = TabList
	last := a.prefs.LastView()
	for i, name := range tabNames {
		if name == last {
			a.tab = Tab(i)
			break
		}
	}

	return tea.Batch(
		a.list.Init(),
		a.board.Init(),
		a.week.Init(),
		a.matrix.Init(),
		a.settings.Init(),
		a.resizeCmd(),
	)
}

func (a *App) resizeCmd() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

// childSize is the window size handed to tab views, leaving room for the tab
// bar and the status line.
func (a *App) childSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.width, Height: max(a.height-3, 5)}
}

func (a *App) activeCapturing() bool {
	switch a.tab {
	case TabList:
		return a.list.Capturing()
	case TabSettings:
		return a.settings.Capturing()
	}
	return false
}

func (a *App) switchTab(t Tab) tea.Cmd {
	a.tab = t
	a.prefs.SetLastView(tabNames[t])
	// Re-deliver DataChanged so the tab recomputes its projection; the
	// memoized projector makes this a no-op unless the cache moved.
	return func() tea.Msg { return views.DataChanged{} }
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.login.Update(msg)
		child := a.childSize()
		a.list.Update(child)
		a.board.Update(child)
		a.week.Update(child)
		a.matrix.Update(child)
		a.settings.Update(child)
		return a, nil

	case bootstrapDoneMsg:
		if a.session.Authenticated() {
			return a, a.enterMain()
		}
		a.state = stateLogin
		return a, tea.Batch(a.login.Init(), a.resizeCmd())

	case views.LoggedIn:
		return a, a.enterMain()

	case views.LoggedOut:
		a.state = stateLogin
		a.login = views.NewLoginView(a.session)
		return a, tea.Batch(a.login.Init(), a.resizeCmd())

	case views.DataChanged:
		// Every tab sees data changes so none renders stale state
		var cmds []tea.Cmd
		for _, v := range []tea.Model{a.list, a.board, a.week, a.matrix, a.settings} {
			if _, cmd := v.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return a, tea.Batch(cmds...)

	case tea.KeyMsg:
		if a.state == stateMain && !a.activeCapturing() {
			switch {
			case key.Matches(msg, a.keys.ListView):
				return a, a.switchTab(TabList)
			case key.Matches(msg, a.keys.BoardView):
				return a, a.switchTab(TabBoard)
			case key.Matches(msg, a.keys.WeekView):
				return a, a.switchTab(TabWeek)
			case key.Matches(msg, a.keys.MatrixView):
				return a, a.switchTab(TabMatrix)
			case key.Matches(msg, a.keys.Settings):
				return a, a.switchTab(TabSettings)
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateLogin:
		_, cmd = a.login.Update(msg)
	case stateMain:
		switch a.tab {
		case TabList:
			_, cmd = a.list.Update(msg)
		case TabBoard:
			_, cmd = a.board.Update(msg)
		case TabWeek:
			_, cmd = a.week.Update(msg)
		case TabMatrix:
			_, cmd = a.matrix.Update(msg)
		case TabSettings:
			_, cmd = a.settings.Update(msg)
		}
	}
	return a, cmd
}

func (a *App) tabBar() string {
	var tabs []string
	for i, label := range tabLabels {
		if Tab(i) == a.tab {
			tabs = append(tabs, a.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, a.styles.Tab.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, bar)
}

func (a *App) statusBar() string {
	if msg := a.cache.LastError(); msg != "" {
		return a.styles.ErrorBar.Width(a.width).Render(msg)
	}
	return a.styles.StatusBar.Width(a.width).Render("")
}

func (a *App) View() string {
	switch a.state {
	case stateLoading:
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			a.styles.TitleMuted.Render("Restoring session..."))

	case stateLogin:
		return a.login.View()
	}

	var body string
	switch a.tab {
	case TabList:
		body = a.list.View()
	case TabBoard:
		body = a.board.View()
	case TabWeek:
		body = a.week.View()
	case TabMatrix:
		body = a.matrix.View()
	case TabSettings:
		body = a.settings.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.tabBar(), body, a.statusBar())
}
