// Package tui is the Bubble Tea front end. It owns no list or session
// logic of its own: views request transitions from the session store,
// the route gate, the filter controllers and the list engines, and
// render whatever those decide.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/api"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/list"
	"github.com/taskdeck/taskdeck/internal/route"
	"github.com/taskdeck/taskdeck/internal/session"
)

// ViewMode represents the current view
type ViewMode int

const (
	// ViewModeGate: waiting for the session store to hydrate before
	// deciding whether protected content may render.
	ViewModeGate ViewMode = iota
	ViewModeLogin
	ViewModeRegister
	ViewModeHome
)

// tabID selects the active home tab.
type tabID int

const (
	tabProjects tabID = iota
	tabTasks
)

// requestTimeout bounds every service call issued from the TUI.
const requestTimeout = 30 * time.Second

// Messages

type hydratedMsg struct{}

// authMsg is sent when a login or register attempt finishes.
type authMsg struct {
	resp         *api.SessionResponse
	err          error
	fromRegister bool
}

type profileMsg struct {
	user *api.User
	err  error
}

type projectsPageMsg struct {
	req  list.Request
	page list.Page[api.Project]
	err  error
}

type tasksPageMsg struct {
	req  list.Request
	page list.Page[api.Task]
	err  error
}

// debouncedMsg is the search quiet-period timer firing. Stale tokens
// are ignored by the filter controller.
type debouncedMsg struct {
	tab   tabID
	token int
}

type projectOptionsMsg struct {
	projects []api.Project
	err      error
}

type taskCreatedMsg struct{ err error }

type taskDeletedMsg struct{ err error }

type spinnerTickMsg struct{}

// Spinner animation frames
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Model is the root Bubble Tea model
type Model struct {
	width  int
	height int

	viewMode ViewMode

	cfg    config.Config
	client *api.Client
	store  *session.Store
	mirror *session.Mirror
	guard  *session.Guard

	keys         KeyMap
	spinnerIndex int

	// Auth forms
	login    authForm
	register authForm

	// Home state
	activeTab tabID
	profile   *api.User
	projects  *pane[api.Project]
	tasks     *pane[api.Task]
	searching bool
	flash     string

	// Task creation overlay
	createOpen     bool
	create         taskForm
	projectOptions []api.Project
}

// NewRootModel builds the root model. The initial view is the route
// gate's decision for the home path, made on the mirror alone - the
// persisted store has not hydrated yet.
func NewRootModel(cfg config.Config, client *api.Client, store *session.Store, mirror *session.Mirror) Model {
	projectDefaults := map[string]string{"status": api.ProjectActive}
	taskDefaults := map[string]string{"status": "all", "priority": "all"}

	m := Model{
		cfg:      cfg,
		client:   client,
		store:    store,
		mirror:   mirror,
		guard:    session.NewGuard(store, mirror),
		keys:     DefaultKeyMap(),
		login:    newLoginForm(),
		register: newRegisterForm(),
		projects: newPane(cfg.ScrollMargin, projectDefaults, renderProject),
		tasks:    newPane(cfg.ScrollMargin, taskDefaults, renderTask),
	}

	decision := route.Decide(route.Home, mirror.Read())
	if decision.Action == route.Redirect && decision.Target == route.Login {
		m.viewMode = ViewModeLogin
	} else {
		m.viewMode = ViewModeGate
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		spinnerTickCmd(),
	}
	if m.viewMode == ViewModeGate {
		cmds = append(cmds, waitForHydrationCmd(m.store))
	}
	return tea.Batch(cmds...)
}

func spinnerTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// waitForHydrationCmd resolves when the persisted session finishes
// restoring.
func waitForHydrationCmd(store *session.Store) tea.Cmd {
	return func() tea.Msg {
		done := make(chan struct{})
		store.OnHydrated(func() { close(done) })
		<-done
		return hydratedMsg{}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := client.Login(ctx, email, password)
		return authMsg{resp: resp, err: err}
	}
}

func (m Model) registerCmd(name, email, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := client.Authenticate(ctx, name, email, password)
		return authMsg{resp: resp, err: err, fromRegister: true}
	}
}

func (m Model) profileCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		user, err := client.CurrentUser(ctx)
		return profileMsg{user: user, err: err}
	}
}

func (m Model) fetchProjectsCmd(req list.Request) tea.Cmd {
	client := m.client
	filters := api.ProjectFilters{
		Name:    m.projects.ctrl.Text(),
		Status:  m.projects.ctrl.Selection("status"),
		Page:    req.PageNum,
		PerPage: m.cfg.PerPage,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := client.ListProjects(ctx, filters)
		if err != nil {
			return projectsPageMsg{req: req, err: err}
		}
		return projectsPageMsg{req: req, page: toPage(resp)}
	}
}

func (m Model) fetchTasksCmd(req list.Request) tea.Cmd {
	client := m.client
	filters := api.TaskFilters{
		Name:     m.tasks.ctrl.Text(),
		Status:   m.tasks.ctrl.Selection("status"),
		Priority: m.tasks.ctrl.Selection("priority"),
		Page:     req.PageNum,
		PerPage:  m.cfg.PerPage,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := client.ListTasks(ctx, filters)
		if err != nil {
			return tasksPageMsg{req: req, err: err}
		}
		return tasksPageMsg{req: req, page: toPage(resp)}
	}
}

// projectOptionsCmd loads the selectable projects for the create form.
func (m Model) projectOptionsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		resp, err := client.ListProjects(ctx, api.ProjectFilters{Status: "all", PerPage: 100})
		if err != nil {
			return projectOptionsMsg{err: err}
		}
		return projectOptionsMsg{projects: resp.Data}
	}
}

func (m Model) createTaskCmd(projectID string, payload api.CreateTaskPayload) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		_, err := client.CreateTask(ctx, projectID, payload)
		return taskCreatedMsg{err: err}
	}
}

func (m Model) deleteTaskCmd(taskID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := client.DeleteTask(ctx, taskID)
		return taskDeletedMsg{err: err}
	}
}

func (m Model) debounceCmd(tab tabID, token int) tea.Cmd {
	return tea.Tick(m.cfg.SearchDebounce(), func(time.Time) tea.Msg {
		return debouncedMsg{tab: tab, token: token}
	})
}

// toPage converts a transport envelope into an engine page.
func toPage[T any](resp *api.ListResponse[T]) list.Page[T] {
	return list.Page[T]{
		Items: resp.Data,
		Pagination: list.Pagination{
			CurrentPage: resp.Meta.Pagination.CurrentPage,
			TotalPages:  resp.Meta.Pagination.TotalPages,
			TotalItems:  resp.Meta.Pagination.TotalItems,
			PerPage:     resp.Meta.Pagination.PerPage,
		},
	}
}

// Update routes messages to the active view
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanes()
		return m, nil

	case spinnerTickMsg:
		m.spinnerIndex = (m.spinnerIndex + 1) % len(spinnerFrames)
		return m, spinnerTickCmd()

	case hydratedMsg:
		return m.handleHydrated()

	case authMsg:
		return m.handleAuthResult(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.viewMode {
	case ViewModeGate:
		return m, nil
	case ViewModeLogin:
		return m.updateLogin(msg)
	case ViewModeRegister:
		return m.updateRegister(msg)
	case ViewModeHome:
		return m.updateHome(msg)
	}
	return m, nil
}

func (m *Model) resizePanes() {
	paneHeight := m.height - 8 // header, tabs, filter row, status bar
	if paneHeight < 3 {
		paneHeight = 3
	}
	paneWidth := m.width - 4
	if paneWidth < 20 {
		paneWidth = 20
	}
	for _, vp := range []*viewport.Model{&m.projects.vp, &m.tasks.vp} {
		vp.Width = paneWidth
		vp.Height = paneHeight
	}
	m.projects.sync()
	m.tasks.sync()
}

// handleHydrated advances the guard once restoration completes.
func (m Model) handleHydrated() (tea.Model, tea.Cmd) {
	if m.viewMode != ViewModeGate {
		return m, nil
	}
	switch m.guard.Advance() {
	case session.Allowed:
		return m.enterHome()
	case session.Denied:
		m.viewMode = ViewModeLogin
		return m, nil
	}
	return m, nil
}

// handleAuthResult applies a finished login or register attempt.
func (m Model) handleAuthResult(msg authMsg) (tea.Model, tea.Cmd) {
	form := &m.login
	if msg.fromRegister {
		form = &m.register
	}
	form.busy = false

	if msg.err != nil {
		form.errMsg = msg.err.Error()
		return m, nil
	}

	user := msg.resp.User
	m.store.SetSession(msg.resp.AccessToken, &user)
	return m.enterHome()
}

// enterHome switches to the protected view. The guard must allow it:
// after a fresh login the store holds the credential; after a restart
// the gate mode waits for hydration first.
func (m Model) enterHome() (tea.Model, tea.Cmd) {
	if m.guard.Advance() == session.Denied {
		m.viewMode = ViewModeLogin
		return m, nil
	}

	m.viewMode = ViewModeHome
	m.activeTab = tabProjects
	if u := m.store.Session().User; u != nil {
		m.profile = u
	}

	cmds := []tea.Cmd{m.profileCmd()}
	if req, ok := m.projects.resetIfStale(); ok {
		cmds = append(cmds, m.fetchProjectsCmd(req))
	}
	m.projects.sync()
	return m, tea.Batch(cmds...)
}

// logout clears the session and returns to the login view.
func (m Model) logout() (tea.Model, tea.Cmd) {
	m.store.ClearSession()
	m.profile = nil
	m.guard = session.NewGuard(m.store, m.mirror)
	m.viewMode = ViewModeLogin
	m.login = newLoginForm()
	return m, textinput.Blink
}

// View renders the active view
func (m Model) View() string {
	switch m.viewMode {
	case ViewModeGate:
		return m.viewGate()
	case ViewModeLogin:
		return m.login.view("Sign in", "Enter your email and password.", m)
	case ViewModeRegister:
		return m.register.view("Create account", "Register to start tracking work.", m)
	case ViewModeHome:
		return m.viewHome()
	}
	return ""
}

func (m Model) viewGate() string {
	frame := spinnerFrames[m.spinnerIndex]
	return "\n  " + TitleStyle.Render("taskdeck") + "\n\n  " +
		DimStyle.Render(frame+" Restoring session...") + "\n"
}
