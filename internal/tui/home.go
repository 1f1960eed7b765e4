package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskdeck/taskdeck/internal/api"
)

var projectStatusOptions = []string{"all", api.ProjectActive, api.ProjectCompleted, api.ProjectArchived}

var taskStatusOptions = []string{"all", api.TaskTodo, api.TaskInProgress, api.TaskInReview, api.TaskDone}

var taskPriorityOptions = []string{"all", api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical}

func (m Model) updateHome(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case profileMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrUnauthorized) {
				return m.logout()
			}
			// Keep rendering the persisted profile on transient errors.
			return m, nil
		}
		m.profile = msg.user
		return m, nil

	case projectsPageMsg:
		m.projects.complete(msg.req, msg.page, msg.err)
		if req, ok := m.projects.observe(); ok {
			return m, m.fetchProjectsCmd(req)
		}
		return m, nil

	case tasksPageMsg:
		m.tasks.complete(msg.req, msg.page, msg.err)
		if req, ok := m.tasks.observe(); ok {
			return m, m.fetchTasksCmd(req)
		}
		return m, nil

	case debouncedMsg:
		return m.handleDebounced(msg)

	case projectOptionsMsg:
		if msg.err != nil {
			m.create.errMsg = msg.err.Error()
			return m, nil
		}
		m.projectOptions = msg.projects
		return m, nil

	case taskCreatedMsg:
		m.create.busy = false
		if msg.err != nil {
			m.create.errMsg = msg.err.Error()
			return m, nil
		}
		m.createOpen = false
		m.flash = SuccessStyle.Render("Task created.")
		req := m.tasks.invalidate()
		m.tasks.sync()
		return m, m.fetchTasksCmd(req)

	case taskDeletedMsg:
		if msg.err != nil {
			m.flash = ErrorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.flash = SuccessStyle.Render("Task deleted.")
		req := m.tasks.invalidate()
		m.tasks.sync()
		return m, m.fetchTasksCmd(req)

	case tea.KeyMsg:
		if m.createOpen {
			return m.updateCreateForm(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleHomeKey(msg)
	}

	return m, nil
}

// handleDebounced applies a settled search. Stale tokens (the user
// kept typing) fall through without touching the list.
func (m Model) handleDebounced(msg debouncedMsg) (tea.Model, tea.Cmd) {
	switch msg.tab {
	case tabProjects:
		if !m.projects.ctrl.Settle(msg.token) {
			return m, nil
		}
		req, _ := m.projects.resetIfStale()
		m.projects.sync()
		return m, m.fetchProjectsCmd(req)
	case tabTasks:
		if !m.tasks.ctrl.Settle(msg.token) {
			return m, nil
		}
		req, _ := m.tasks.resetIfStale()
		m.tasks.sync()
		return m, m.fetchTasksCmd(req)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.projects.search.Blur()
		m.tasks.search.Blur()
		return m, nil
	case "enter":
		// Apply immediately instead of waiting out the quiet period.
		m.searching = false
		switch m.activeTab {
		case tabProjects:
			m.projects.search.Blur()
			m.projects.ctrl.SetText(m.projects.search.Value())
			if m.projects.ctrl.Flush() {
				req, _ := m.projects.resetIfStale()
				m.projects.sync()
				return m, m.fetchProjectsCmd(req)
			}
		case tabTasks:
			m.tasks.search.Blur()
			m.tasks.ctrl.SetText(m.tasks.search.Value())
			if m.tasks.ctrl.Flush() {
				req, _ := m.tasks.resetIfStale()
				m.tasks.sync()
				return m, m.fetchTasksCmd(req)
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabProjects:
		before := m.projects.search.Value()
		m.projects.search, cmd = m.projects.search.Update(msg)
		if v := m.projects.search.Value(); v != before {
			m.projects.debounceToken = m.projects.ctrl.SetText(v)
			return m, tea.Batch(cmd, m.debounceCmd(tabProjects, m.projects.debounceToken))
		}
	case tabTasks:
		before := m.tasks.search.Value()
		m.tasks.search, cmd = m.tasks.search.Update(msg)
		if v := m.tasks.search.Value(); v != before {
			m.tasks.debounceToken = m.tasks.ctrl.SetText(v)
			return m, tea.Batch(cmd, m.debounceCmd(tabTasks, m.tasks.debounceToken))
		}
	}
	return m, cmd
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "ctrl+l":
		return m.logout()

	case "tab":
		if m.activeTab == tabProjects {
			m.activeTab = tabTasks
			if req, ok := m.tasks.resetIfStale(); ok {
				m.tasks.sync()
				return m, m.fetchTasksCmd(req)
			}
		} else {
			m.activeTab = tabProjects
			if req, ok := m.projects.resetIfStale(); ok {
				m.projects.sync()
				return m, m.fetchProjectsCmd(req)
			}
		}
		return m, nil

	case "/":
		m.searching = true
		if m.activeTab == tabProjects {
			m.projects.search.Focus()
		} else {
			m.tasks.search.Focus()
		}
		return m, textinput.Blink

	case "f":
		return m.cycleFilter("status")

	case "p":
		if m.activeTab == tabTasks {
			return m.cycleFilter("priority")
		}
		return m, nil

	case "r":
		return m.retryOrRefresh()

	case "n":
		if m.activeTab == tabTasks {
			m.createOpen = true
			m.create = newTaskForm()
			return m, tea.Batch(textinput.Blink, m.projectOptionsCmd())
		}
		return m, nil

	case "d":
		if m.activeTab == tabTasks {
			if task, ok := m.tasks.selectedItem(); ok {
				return m, m.deleteTaskCmd(task.ID)
			}
		}
		return m, nil

	case "up", "k":
		return m.scrollBy(-1)
	case "down", "j":
		return m.scrollBy(1)
	case "pgup":
		return m.scrollBy(-m.pageRows())
	case "pgdown":
		return m.scrollBy(m.pageRows())
	}

	return m, nil
}

func (m Model) pageRows() int {
	vp := m.projects.vp
	if m.activeTab == tabTasks {
		vp = m.tasks.vp
	}
	rows := vp.Height / rowHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) scrollBy(rows int) (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabProjects:
		m.projects.moveSelection(rows)
		m.projects.sync()
		if req, ok := m.projects.observe(); ok {
			return m, m.fetchProjectsCmd(req)
		}
	case tabTasks:
		m.tasks.moveSelection(rows)
		m.tasks.sync()
		if req, ok := m.tasks.observe(); ok {
			return m, m.fetchTasksCmd(req)
		}
	}
	return m, nil
}

func (m Model) cycleFilter(field string) (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabProjects:
		next := nextOption(projectStatusOptions, m.projects.ctrl.Selection(field))
		if m.projects.ctrl.Select(field, next) {
			req, _ := m.projects.resetIfStale()
			m.projects.sync()
			return m, m.fetchProjectsCmd(req)
		}
	case tabTasks:
		options := taskStatusOptions
		if field == "priority" {
			options = taskPriorityOptions
		}
		next := nextOption(options, m.tasks.ctrl.Selection(field))
		if m.tasks.ctrl.Select(field, next) {
			req, _ := m.tasks.resetIfStale()
			m.tasks.sync()
			return m, m.fetchTasksCmd(req)
		}
	}
	return m, nil
}

func nextOption(options []string, current string) string {
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}

// retryOrRefresh re-issues the failed request when the list is in an
// error state, otherwise forces a full invalidation.
func (m Model) retryOrRefresh() (tea.Model, tea.Cmd) {
	switch m.activeTab {
	case tabProjects:
		if req, ok := m.projects.engine.Retry(); ok {
			m.projects.sync()
			return m, m.fetchProjectsCmd(req)
		}
		req := m.projects.invalidate()
		m.projects.sync()
		return m, m.fetchProjectsCmd(req)
	case tabTasks:
		if req, ok := m.tasks.engine.Retry(); ok {
			m.tasks.sync()
			return m, m.fetchTasksCmd(req)
		}
		req := m.tasks.invalidate()
		m.tasks.sync()
		return m, m.fetchTasksCmd(req)
	}
	return m, nil
}

// --- Task creation overlay ---

// createField indices; choice rows are cycled with left/right.
const (
	fieldProject = iota
	fieldName
	fieldDescription
	fieldStartDate
	fieldEndDate
	fieldStatus
	fieldPriority
	fieldCount
)

var createStatusOptions = []string{api.TaskTodo, api.TaskInProgress, api.TaskDone}

var createPriorityOptions = []string{api.PriorityLow, api.PriorityMedium, api.PriorityHigh, api.PriorityCritical}

type taskForm struct {
	name  textinput.Model
	desc  textinput.Model
	start textinput.Model
	end   textinput.Model

	projectIdx  int
	statusIdx   int
	priorityIdx int

	focus     int
	fieldErrs [fieldCount]string
	errMsg    string
	busy      bool
}

func newTaskForm() taskForm {
	mk := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Prompt = "> "
		in.PromptStyle = InputPromptStyle
		in.CharLimit = 200
		return in
	}

	today := time.Now().Format("2006-01-02")
	f := taskForm{
		name:        mk("Task name"),
		desc:        mk("What needs doing?"),
		start:       mk(today),
		end:         mk(today),
		priorityIdx: 1, // medium
	}
	f.start.SetValue(today)
	return f
}

func (f *taskForm) focusedInput() *textinput.Model {
	switch f.focus {
	case fieldName:
		return &f.name
	case fieldDescription:
		return &f.desc
	case fieldStartDate:
		return &f.start
	case fieldEndDate:
		return &f.end
	}
	return nil
}

func (f *taskForm) setFocus(i int) {
	f.focus = i
	for _, in := range []*textinput.Model{&f.name, &f.desc, &f.start, &f.end} {
		in.Blur()
	}
	if in := f.focusedInput(); in != nil {
		in.Focus()
	}
}

func (m Model) updateCreateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.create.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.createOpen = false
		return m, nil
	case "tab", "down":
		m.create.setFocus((m.create.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.create.setFocus((m.create.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch m.create.focus {
		case fieldProject:
			if n := len(m.projectOptions); n > 0 {
				m.create.projectIdx = (m.create.projectIdx + delta + n) % n
			}
			return m, nil
		case fieldStatus:
			n := len(createStatusOptions)
			m.create.statusIdx = (m.create.statusIdx + delta + n) % n
			return m, nil
		case fieldPriority:
			n := len(createPriorityOptions)
			m.create.priorityIdx = (m.create.priorityIdx + delta + n) % n
			return m, nil
		}
	case "enter":
		if m.create.focus < fieldCount-1 {
			m.create.setFocus(m.create.focus + 1)
			return m, nil
		}
		return m.submitCreate()
	}

	if in := m.create.focusedInput(); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) submitCreate() (tea.Model, tea.Cmd) {
	f := &m.create
	f.errMsg = ""
	for i := range f.fieldErrs {
		f.fieldErrs[i] = ""
	}

	if m.profile == nil {
		f.errMsg = "You must be logged in to create a task."
		return m, nil
	}

	ok := true
	if len(m.projectOptions) == 0 {
		f.fieldErrs[fieldProject] = "No projects available"
		ok = false
	}
	if len(strings.TrimSpace(f.name.Value())) < 3 {
		f.fieldErrs[fieldName] = "Task name must be at least 3 characters"
		ok = false
	}
	if len(strings.TrimSpace(f.desc.Value())) < 5 {
		f.fieldErrs[fieldDescription] = "Description must be at least 5 characters"
		ok = false
	}
	start, err := time.Parse("2006-01-02", strings.TrimSpace(f.start.Value()))
	if err != nil {
		f.fieldErrs[fieldStartDate] = "Use YYYY-MM-DD"
		ok = false
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(f.end.Value()))
	if err != nil {
		f.fieldErrs[fieldEndDate] = "Use YYYY-MM-DD"
		ok = false
	} else if f.fieldErrs[fieldStartDate] == "" && end.Before(start) {
		f.fieldErrs[fieldEndDate] = "End date must be after start date"
		ok = false
	}
	if !ok {
		return m, nil
	}

	payload := api.CreateTaskPayload{
		Name:        strings.TrimSpace(f.name.Value()),
		Description: strings.TrimSpace(f.desc.Value()),
		StartDate:   start.UTC().Format(time.RFC3339),
		EndDate:     end.UTC().Format(time.RFC3339),
		Status:      createStatusOptions[f.statusIdx],
		Priority:    createPriorityOptions[f.priorityIdx],
		AssigneeID:  m.profile.ID,
	}

	f.busy = true
	return m, m.createTaskCmd(m.projectOptions[f.projectIdx].ID, payload)
}

// --- Views ---

func (m Model) viewHome() string {
	var b strings.Builder

	name, email := "Welcome back!", ""
	if m.profile != nil {
		name, email = m.profile.Name, m.profile.Email
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		TitleStyle.Render("taskdeck"),
		StatusBarStyle.Render(name+"  "+DimStyle.Render(email)),
	)
	b.WriteString("\n" + header + "\n\n")

	tabs := []string{"Projects", "Tasks"}
	var rendered []string
	for i, tab := range tabs {
		if tabID(i) == m.activeTab {
			rendered = append(rendered, TabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, TabInactiveStyle.Render(tab))
		}
	}
	b.WriteString(" " + lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n")

	b.WriteString(" " + m.filterRow() + "\n")

	if m.createOpen {
		b.WriteString(m.viewCreateForm())
	} else {
		switch m.activeTab {
		case tabProjects:
			b.WriteString(PanelStyle.Render(m.projects.vp.View()) + "\n")
		case tabTasks:
			b.WriteString(PanelStyle.Render(m.tasks.vp.View()) + "\n")
		}
	}

	if m.flash != "" {
		b.WriteString(" " + m.flash + "\n")
	}
	b.WriteString(StatusBarStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) filterRow() string {
	switch m.activeTab {
	case tabProjects:
		search := m.projects.search.View()
		if !m.searching {
			search = DimStyle.Render("/ " + orPlaceholder(m.projects.ctrl.Raw(), "search"))
		}
		return search + "   " + LabelStyle.Render("status:") + HelpKeyStyle.Render(m.projects.ctrl.Selection("status"))
	default:
		search := m.tasks.search.View()
		if !m.searching {
			search = DimStyle.Render("/ " + orPlaceholder(m.tasks.ctrl.Raw(), "search"))
		}
		return search + "   " +
			LabelStyle.Render("status:") + HelpKeyStyle.Render(m.tasks.ctrl.Selection("status")) + "  " +
			LabelStyle.Render("priority:") + HelpKeyStyle.Render(m.tasks.ctrl.Selection("priority"))
	}
}

func orPlaceholder(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func (m Model) helpLine() string {
	if m.createOpen {
		return "tab: next field · ←/→: change option · enter: save · esc: cancel"
	}
	bindings := []key.Binding{m.keys.Switch, m.keys.Focus, m.keys.Filter}
	if m.activeTab == tabTasks {
		bindings = append(bindings, m.keys.New, m.keys.Delete)
	}
	bindings = append(bindings, m.keys.Retry, m.keys.Logout, m.keys.Quit)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+": "+b.Help().Desc)
	}
	return strings.Join(parts, " · ")
}

func (m Model) viewCreateForm() string {
	f := m.create
	var b strings.Builder
	b.WriteString("\n " + FormTitleStyle.Render("New task") + "\n\n")

	project := "loading projects..."
	if len(m.projectOptions) > 0 {
		project = m.projectOptions[f.projectIdx].Name
	}
	b.WriteString(formRow("Project", "◂ "+project+" ▸", f.focus == fieldProject, f.fieldErrs[fieldProject]))
	b.WriteString(formRow("Name", f.name.View(), f.focus == fieldName, f.fieldErrs[fieldName]))
	b.WriteString(formRow("Description", f.desc.View(), f.focus == fieldDescription, f.fieldErrs[fieldDescription]))
	b.WriteString(formRow("Start date", f.start.View(), f.focus == fieldStartDate, f.fieldErrs[fieldStartDate]))
	b.WriteString(formRow("End date", f.end.View(), f.focus == fieldEndDate, f.fieldErrs[fieldEndDate]))
	b.WriteString(formRow("Status", "◂ "+createStatusOptions[f.statusIdx]+" ▸", f.focus == fieldStatus, f.fieldErrs[fieldStatus]))
	b.WriteString(formRow("Priority", "◂ "+createPriorityOptions[f.priorityIdx]+" ▸", f.focus == fieldPriority, f.fieldErrs[fieldPriority]))

	if f.busy {
		b.WriteString("\n " + DimStyle.Render(spinnerFrames[m.spinnerIndex]+" Saving...") + "\n")
	} else if f.errMsg != "" {
		b.WriteString("\n " + ErrorStyle.Render(f.errMsg) + "\n")
	}
	return b.String()
}

func formRow(label, value string, focused bool, fieldErr string) string {
	marker := "  "
	if focused {
		marker = HelpKeyStyle.Render("▸ ")
	}
	row := fmt.Sprintf(" %s%s %s\n", marker, LabelStyle.Render(label+":"), value)
	if fieldErr != "" {
		row += "    " + ErrorStyle.Render(fieldErr) + "\n"
	}
	return row
}
