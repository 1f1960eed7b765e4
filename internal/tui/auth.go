package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/route"
)

// authForm is the shared shape of the login and register views.
// Validation failures stay field-scoped and never reach the network.
type authForm struct {
	inputs    []textinput.Model
	labels    []string
	fieldErrs []string
	focus     int
	errMsg    string
	busy      bool
}

func newLoginForm() authForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "> "
	email.PromptStyle = InputPromptStyle
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.Prompt = "> "
	password.PromptStyle = InputPromptStyle
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	return authForm{
		inputs:    []textinput.Model{email, password},
		labels:    []string{"Email", "Password"},
		fieldErrs: make([]string, 2),
	}
}

func newRegisterForm() authForm {
	name := textinput.New()
	name.Placeholder = "Your name"
	name.Prompt = "> "
	name.PromptStyle = InputPromptStyle
	name.CharLimit = 120
	name.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "> "
	email.PromptStyle = InputPromptStyle
	email.CharLimit = 120

	password := textinput.New()
	password.Placeholder = "at least 8 characters"
	password.Prompt = "> "
	password.PromptStyle = InputPromptStyle
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	confirm := textinput.New()
	confirm.Placeholder = "repeat password"
	confirm.Prompt = "> "
	confirm.PromptStyle = InputPromptStyle
	confirm.EchoMode = textinput.EchoPassword
	confirm.CharLimit = 120

	return authForm{
		inputs:    []textinput.Model{name, email, password, confirm},
		labels:    []string{"Name", "Email", "Password", "Confirm password"},
		fieldErrs: make([]string, 4),
	}
}

func (f *authForm) setFocus(i int) {
	f.focus = i
	for idx := range f.inputs {
		if idx == i {
			f.inputs[idx].Focus()
		} else {
			f.inputs[idx].Blur()
		}
	}
}

func (f *authForm) values() []string {
	vals := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		vals[i] = in.Value()
	}
	return vals
}

func (f *authForm) clearErrors() {
	f.errMsg = ""
	for i := range f.fieldErrs {
		f.fieldErrs[i] = ""
	}
}

// navigate runs a path through the route gate and switches views per
// its decision.
func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	decision := route.Decide(path, m.mirror.Read())
	if decision.Action == route.Redirect {
		path = decision.Target
	}

	switch path {
	case route.Login:
		m.viewMode = ViewModeLogin
		return m, textinput.Blink
	case route.Register:
		m.viewMode = ViewModeRegister
		return m, textinput.Blink
	default:
		return m.enterHome()
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && !m.login.busy {
		switch key.String() {
		case "tab", "down":
			m.login.setFocus((m.login.focus + 1) % len(m.login.inputs))
			return m, nil
		case "shift+tab", "up":
			m.login.setFocus((m.login.focus + len(m.login.inputs) - 1) % len(m.login.inputs))
			return m, nil
		case "ctrl+r":
			return m.navigate(route.Register)
		case "enter":
			if m.login.focus < len(m.login.inputs)-1 {
				m.login.setFocus(m.login.focus + 1)
				return m, nil
			}
			return m.submitLogin()
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	m.login.clearErrors()
	vals := m.login.values()
	email, password := strings.TrimSpace(vals[0]), vals[1]

	ok := true
	if !validEmail(email) {
		m.login.fieldErrs[0] = "Please enter a valid email"
		ok = false
	}
	if len(password) < 6 {
		m.login.fieldErrs[1] = "Password must be at least 6 characters"
		ok = false
	}
	if !ok {
		return m, nil
	}

	m.login.busy = true
	return m, m.loginCmd(email, password)
}

func (m Model) updateRegister(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && !m.register.busy {
		switch key.String() {
		case "tab", "down":
			m.register.setFocus((m.register.focus + 1) % len(m.register.inputs))
			return m, nil
		case "shift+tab", "up":
			m.register.setFocus((m.register.focus + len(m.register.inputs) - 1) % len(m.register.inputs))
			return m, nil
		case "esc":
			return m.navigate(route.Login)
		case "enter":
			if m.register.focus < len(m.register.inputs)-1 {
				m.register.setFocus(m.register.focus + 1)
				return m, nil
			}
			return m.submitRegister()
		}
	}

	var cmd tea.Cmd
	m.register.inputs[m.register.focus], cmd = m.register.inputs[m.register.focus].Update(msg)
	return m, cmd
}

func (m Model) submitRegister() (tea.Model, tea.Cmd) {
	m.register.clearErrors()
	vals := m.register.values()
	name := strings.TrimSpace(vals[0])
	email := strings.TrimSpace(vals[1])
	password, confirm := vals[2], vals[3]

	ok := true
	if len(name) < 2 {
		m.register.fieldErrs[0] = "Name must be at least 2 characters"
		ok = false
	}
	if !validEmail(email) {
		m.register.fieldErrs[1] = "Please enter a valid email"
		ok = false
	}
	if len(password) < 8 {
		m.register.fieldErrs[2] = "Password must be at least 8 characters"
		ok = false
	}
	if confirm != password {
		m.register.fieldErrs[3] = "Passwords do not match"
		ok = false
	}
	if !ok {
		return m, nil
	}

	m.register.busy = true
	return m, m.registerCmd(name, email, password)
}

// validEmail is a shape check, not RFC parsing; the service remains
// the authority.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}

func (f authForm) view(title, subtitle string, m Model) string {
	var b strings.Builder
	b.WriteString("\n  " + TitleStyle.Render("taskdeck") + "\n\n")
	b.WriteString("  " + FormTitleStyle.Render(title) + "\n")
	b.WriteString("  " + DimStyle.Render(subtitle) + "\n\n")

	for i, input := range f.inputs {
		b.WriteString("  " + LabelStyle.Render(f.labels[i]) + "\n")
		b.WriteString("  " + input.View() + "\n")
		if f.fieldErrs[i] != "" {
			b.WriteString("  " + ErrorStyle.Render(f.fieldErrs[i]) + "\n")
		}
		b.WriteString("\n")
	}

	if f.busy {
		b.WriteString("  " + DimStyle.Render(spinnerFrames[m.spinnerIndex]+" Working...") + "\n")
	} else if f.errMsg != "" {
		b.WriteString("  " + ErrorStyle.Render(f.errMsg) + "\n")
	}

	b.WriteString("\n  " + DimStyle.Render(authFooter(len(f.inputs) == 2)) + "\n")
	return b.String()
}

func authFooter(isLogin bool) string {
	if isLogin {
		return "enter: sign in · ctrl+r: create account · ctrl+c: quit"
	}
	return "enter: register · esc: back to sign in · ctrl+c: quit"
}
