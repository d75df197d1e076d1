package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

// DetailModel renders one scan with its findings. ScanID identifies
// which scan this view currently owns; fetch results for any other id
// are discarded by the router.
type DetailModel struct {
	ScanID int
	Err    error

	scan    *model.Scan
	vp      viewport.Model
	ready   bool
	width   int
	height  int
	loading bool
}

func NewDetailModel() DetailModel {
	return DetailModel{loading: true, width: 80, height: 24}
}

func (m *DetailModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.ready {
		m.vp.Width = width
		m.vp.Height = height - 6
		if m.scan != nil {
			m.vp.SetContent(m.renderScan())
		}
	}
}

func (m *DetailModel) SetScan(scan *model.Scan) {
	m.scan = scan
	m.loading = false
	m.Err = nil
	if !m.ready {
		m.vp = viewport.New(m.width, m.height-6)
		m.ready = true
	}
	m.vp.SetContent(m.renderScan())
}

func (m DetailModel) Update(msg tea.Msg) (DetailModel, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m DetailModel) renderScan() string {
	s := m.scan
	var b strings.Builder

	b.WriteString(detailTitleStyle.Render(fmt.Sprintf("Scan #%d", s.ID)) + "\n")
	b.WriteString(detailTextStyle.Render("Target:   "+s.TargetURL) + "\n")
	b.WriteString(detailTextStyle.Render("Status:   ") + renderStatus(s.Status) + "\n")
	b.WriteString(detailTextStyle.Render("Owner:    "+s.User.Username) + "\n")
	b.WriteString(detailTextStyle.Render("Created:  "+s.CreatedAt.Local().Format("2006-01-02 15:04:05")) + "\n")
	if s.CompletedAt != nil {
		b.WriteString(detailTextStyle.Render("Finished: "+s.CompletedAt.Local().Format("2006-01-02 15:04:05")) + "\n")
	}
	b.WriteString(detailTextStyle.Render(fmt.Sprintf("Findings: %d", s.VulnerabilityCount())) + "\n")

	if s.Status == model.ScanRunning || s.Status == model.ScanPending {
		b.WriteString("\n" + placeholderStyle.Render("Scan in progress; findings appear once it completes.") + "\n")
		return b.String()
	}

	if len(s.Vulnerabilities) == 0 {
		b.WriteString("\n" + placeholderStyle.Render("No vulnerabilities found.") + "\n")
		return b.String()
	}

	b.WriteString("\n" + detailTitleStyle.Render("Vulnerabilities") + "\n")
	for _, v := range s.Vulnerabilities {
		line := fmt.Sprintf("%s  %s", renderSeverity(v.Severity), v.Name)
		if v.CWEID != nil {
			line += helpStyle.Render("  " + *v.CWEID)
		}
		b.WriteString(line + "\n")
		if v.URLPath != "" {
			b.WriteString(helpStyle.Render("    at "+v.URLPath) + "\n")
		}
		if v.Description != "" {
			b.WriteString(detailTextStyle.Render("    "+v.Description) + "\n")
		}
	}
	return b.String()
}

func (m DetailModel) View() string {
	if m.Err != nil {
		return errorStyle.Render(fmt.Sprintf("Failed to load scan %d: %v", m.ScanID, m.Err))
	}
	if m.loading || !m.ready {
		return placeholderStyle.Render(fmt.Sprintf("Loading scan %d...", m.ScanID))
	}
	help := helpStyle.Render("esc: back • r: refresh • q: quit")
	return lipgloss.JoinVertical(lipgloss.Left, m.vp.View(), "", help)
}
