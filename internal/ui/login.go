package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
)

// LoginModel is the credential entry form. A rejected login stays on
// the form with an inline error; it never tears anything else down.
type LoginModel struct {
	username textinput.Model
	password textinput.Model
	focus    int

	submitting bool
	submitted  bool
	errMsg     string
}

func NewLoginModel() LoginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return LoginModel{username: username, password: password}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Submitted reports whether the last Update produced a submission.
func (m LoginModel) Submitted() bool {
	return m.submitted
}

func (m LoginModel) Credentials() (username, password string) {
	return m.username.Value(), m.password.Value()
}

// HandleResult consumes the outcome of a login attempt.
func (m LoginModel) HandleResult(msg loginResultMsg) (LoginModel, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		if errors.Is(msg.err, apierr.ErrInvalidCredentials) {
			m.errMsg = "Invalid username or password."
		} else {
			m.errMsg = msg.err.Error()
		}
		m.password.SetValue("")
	}
	return m, nil
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	m.submitted = false

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.submitting {
		return m.updateInputs(msg)
	}

	switch keyMsg.String() {
	case "tab", "shift+tab", "up", "down":
		m.focus = (m.focus + 1) % 2
		if m.focus == 0 {
			m.username.Focus()
			m.password.Blur()
		} else {
			m.username.Blur()
			m.password.Focus()
		}
		return m, textinput.Blink
	case "enter":
		if m.focus == 0 {
			m.focus = 1
			m.username.Blur()
			m.password.Focus()
			return m, textinput.Blink
		}
		if m.username.Value() == "" || m.password.Value() == "" {
			m.errMsg = "Username and password are required."
			return m, nil
		}
		m.submitting = true
		m.submitted = true
		m.errMsg = ""
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m LoginModel) updateInputs(msg tea.Msg) (LoginModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m LoginModel) View() string {
	lines := []string{
		titleStyle.Render("Sign in"),
		"",
		m.username.View(),
		m.password.View(),
	}
	if m.submitting {
		lines = append(lines, "", placeholderStyle.Render("Signing in..."))
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	lines = append(lines, "", helpStyle.Render("enter: submit • tab: switch field • ctrl+c: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
