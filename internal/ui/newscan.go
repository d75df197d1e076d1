package ui

import (
	"net/url"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// NewScanModel is the target entry form for queuing a dynamic scan.
type NewScanModel struct {
	input textinput.Model

	submitting bool
	submitted  bool
	cancelled  bool
	errMsg     string
}

func NewNewScanModel() NewScanModel {
	input := textinput.New()
	input.Placeholder = "https://target.example.com"
	input.CharLimit = 256
	input.Focus()
	return NewScanModel{input: input}
}

func (m NewScanModel) Submitted() bool {
	return m.submitted
}

func (m NewScanModel) Cancelled() bool {
	return m.cancelled
}

func (m NewScanModel) TargetURL() string {
	return m.input.Value()
}

// HandleResult consumes the outcome of the create request.
func (m NewScanModel) HandleResult(msg scanCreatedMsg) (NewScanModel, tea.Cmd) {
	m.submitting = false
	if msg.err != nil {
		m.errMsg = msg.err.Error()
	}
	return m, nil
}

func (m NewScanModel) Update(msg tea.Msg) (NewScanModel, tea.Cmd) {
	m.submitted = false
	m.cancelled = false

	if keyMsg, ok := msg.(tea.KeyMsg); ok && !m.submitting {
		switch keyMsg.String() {
		case "esc":
			m.cancelled = true
			return m, nil
		case "enter":
			target := m.input.Value()
			if !validTarget(target) {
				m.errMsg = "Enter an absolute http or https URL."
				return m, nil
			}
			m.submitting = true
			m.submitted = true
			m.errMsg = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func validTarget(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (m NewScanModel) View() string {
	lines := []string{
		titleStyle.Render("New scan"),
		"",
		m.input.View(),
	}
	if m.submitting {
		lines = append(lines, "", placeholderStyle.Render("Queuing scan..."))
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	lines = append(lines, "", helpStyle.Render("enter: queue • esc: cancel"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
